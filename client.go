package ycd

import (
	"context"
	"log/slog"

	"github.com/rubpy/crawly/cclient"
	"github.com/rubpy/crawly/clog"
	"github.com/rubpy/crawly/csync"
)

//////////////////////////////////////////////////

// Client talks to the YouTube Comments Downloader API. It is safe for
// concurrent use.
type Client struct {
	api        cclient.APIClient
	logger     *slog.Logger
	credential Credential
	observer   Observer
	store      BinaryDataStore

	settings csync.Value[Settings]
}

func NewClient(opts ...ConfigOption) (*Client, error) {
	var cfg config

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	c, err := buildClientFromConfig(&cfg)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) BaseURL() string {
	return c.api.BaseURL()
}

func (c *Client) Logger() *slog.Logger {
	return c.logger
}

func (c *Client) Log(ctx context.Context, params clog.Params) {
	if c.logger == nil {
		return
	}

	clog.WithParams(c.logger, ctx, params)
}
