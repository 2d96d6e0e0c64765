package ycd

import (
	"time"
)

//////////////////////////////////////////////////

type Settings struct {
	// Delay between two status requests while a job is pending.
	PollInterval time.Duration

	// Number of input items processed at the same time by Downloader.
	Concurrency int

	// Page size used by the getAll operation when not returning everything.
	ListLimit int

	// Per-request timeout of the underlying HTTP client, in seconds.
	RequestTimeoutSeconds int
}

var DefaultSettings = Settings{
	PollInterval: 5000 * time.Millisecond,
	Concurrency:  5,
	ListLimit:    50,

	RequestTimeoutSeconds: 30,
}

//////////////////////////////////////////////////

func (c *Client) loadSettings() Settings {
	return c.settings.Load()
}

func (c *Client) setSettings(settings Settings) {
	c.settings.Store(settings)
}

func (c *Client) Settings() Settings {
	return c.loadSettings()
}

func (c *Client) SetSettings(settings Settings) {
	c.setSettings(settings)
}

func (s Settings) pollInterval() time.Duration {
	if s.PollInterval <= 0 {
		return DefaultSettings.PollInterval
	}

	return s.PollInterval
}

func (s Settings) concurrency() int {
	if s.Concurrency < 1 {
		return 1
	}

	return s.Concurrency
}

func (s Settings) listLimit() int {
	if s.ListLimit < 1 {
		return DefaultSettings.ListLimit
	}

	return s.ListLimit
}
