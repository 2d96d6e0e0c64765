package ycd

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rubpy/crawly/cclient"
	"github.com/rubpy/crawly/clog"
)

//////////////////////////////////////////////////

// Result is the raw payload of a finished download.
type Result struct {
	ContentType string
	Body        []byte
}

func (c *Client) request(ctx context.Context, method string, endpointURI string, urlParams cclient.URLParams, headers http.Header, bodyData interface{}) (body []byte, header http.Header, err error) {
	resp, err := c.api.Request(ctx, method, endpointURI, urlParams, headers, bodyData)
	if err != nil {
		return
	}
	defer resp.Close()

	header = resp.Header()
	body, err = resp.Body()

	return
}

//////////////////////////////////////////////////

func (c *Client) TestCredential(ctx context.Context) (user map[string]any, err error) {
	if ctx == nil {
		ctx = context.Background()
	} else {
		if err = ctx.Err(); err != nil {
			return
		}
	}

	body, _, err := c.request(ctx, "GET", "v1/user", nil, nil, nil)
	if err != nil {
		return
	}

	if len(body) > 0 {
		if err = json.Unmarshal(body, &user); err != nil {
			return nil, err
		}
	}

	return
}

func (c *Client) CreateDownload(ctx context.Context, rawURL string, kind ContentKind) (dl *Download, err error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		err = InvalidURL
		return
	}

	if !kind.Valid() {
		err = InvalidContentKind
		return
	}

	if ctx == nil {
		ctx = context.Background()
	} else {
		if err = ctx.Err(); err != nil {
			return
		}
	}

	body, _, err := c.request(ctx, "POST", "v1/downloads", nil, http.Header{
		"Content-Type": {"application/json"},
	}, createDownloadRequest{
		URL:         rawURL,
		ContentType: kind,
	})
	if err != nil {
		return
	}

	dl, err = decodeDownload(body)
	if err != nil {
		return nil, err
	}

	if dl.ID == "" {
		return nil, InvalidDownloadID
	}

	c.observer.JobCreated(kind)
	return
}

func (c *Client) GetDownload(ctx context.Context, id DownloadID) (dl *Download, err error) {
	if id == "" {
		err = InvalidDownloadID
		return
	}

	if ctx == nil {
		ctx = context.Background()
	} else {
		if err = ctx.Err(); err != nil {
			return
		}
	}

	body, _, err := c.request(ctx, "GET", downloadPath(id), nil, http.Header{
		"Content-Type": {"application/json"},
	}, nil)
	if err != nil {
		return
	}

	return decodeDownload(body)
}

// ListDownloads returns the most recent jobs. A limit below 1 asks the API for
// every job.
func (c *Client) ListDownloads(ctx context.Context, limit int) (dls []*Download, err error) {
	if ctx == nil {
		ctx = context.Background()
	} else {
		if err = ctx.Err(); err != nil {
			return
		}
	}

	var params cclient.URLParams
	if limit > 0 {
		params = cclient.URLParams{}
		params.Set("limit", strconv.Itoa(limit))
	}

	body, _, err := c.request(ctx, "GET", "v1/downloads", params, nil, nil)
	if err != nil {
		return
	}

	var list listDownloadsResponse
	if err = json.Unmarshal(body, &list); err != nil {
		return nil, err
	}

	dls = make([]*Download, 0, len(list.Data))
	for _, raw := range list.Data {
		dl, err := decodeDownload(raw)
		if err != nil {
			return nil, err
		}

		dls = append(dls, dl)
	}

	return
}

// SaveDownload fetches the result of a job in the given format. The server may
// answer with a different content type (zip archives for bulk kinds).
func (c *Client) SaveDownload(ctx context.Context, id DownloadID, format FileFormat) (res *Result, err error) {
	if id == "" {
		err = InvalidDownloadID
		return
	}

	if format == "" {
		format = FormatJSON
	}

	if ctx == nil {
		ctx = context.Background()
	} else {
		if err = ctx.Err(); err != nil {
			return
		}
	}

	body, header, err := c.request(ctx, "GET", downloadPath(id, "save"), nil, http.Header{
		"Accept": {format.String()},
	}, nil)
	if err != nil {
		return
	}

	res = &Result{
		ContentType: header.Get("Content-Type"),
		Body:        body,
	}

	return
}

//////////////////////////////////////////////////

// AwaitDownload polls the job until it leaves the pending states. There is no
// upper bound on the number of polls; cancel ctx to give up early.
func (c *Client) AwaitDownload(ctx context.Context, dl *Download) (final *Download, err error) {
	if dl == nil || dl.ID == "" {
		err = InvalidDownloadID
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}

	interval := c.loadSettings().pollInterval()
	started := time.Now()

	final = dl
	for final.Status.Pending() {
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return final, ctx.Err()
		case <-timer.C:
		}

		var next *Download
		next, err = c.GetDownload(ctx, dl.ID)
		if err != nil {
			return final, err
		}
		if next.ID == "" {
			next.ID = dl.ID
		}
		final = next

		c.observer.JobPolled(final.Status)
		c.Log(ctx, clog.Params{
			Message: "poll",
			Level:   slog.LevelDebug,

			Values: clog.ParamGroup{
				"id":     dl.ID.String(),
				"status": final.Status.String(),
			},
		})
	}

	c.observer.JobFinished(final.Status, time.Since(started))
	return
}

// CreateAndAwait creates a job and waits for it to finish or fail. An error
// status is returned as a regular Download, not as an error.
func (c *Client) CreateAndAwait(ctx context.Context, rawURL string, kind ContentKind) (dl *Download, err error) {
	dl, err = c.CreateDownload(ctx, rawURL, kind)
	if err != nil {
		return
	}

	return c.AwaitDownload(ctx, dl)
}
