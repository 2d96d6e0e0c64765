package ycd

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rubpy/crawly/clog"
)

//////////////////////////////////////////////////

// DownloadParams are the per-item parameters of a Downloader execution.
type DownloadParams struct {
	URL          string
	ContentType  ContentKind
	ReturnFormat ReturnFormat

	// Only used with ReturnFile.
	FileFormat FileFormat
}

type ExecuteOptions struct {
	// Turn item failures into {"error": msg} items instead of failing the batch.
	ContinueOnFail bool
}

// Downloader creates a job for every input item, waits for it and returns the
// materialized result.
type Downloader struct {
	client *Client
}

func NewDownloader(client *Client) (*Downloader, error) {
	if client == nil {
		return nil, NilClient
	}

	return &Downloader{client: client}, nil
}

func (d *Downloader) Client() *Client {
	return d.client
}

// Process runs the whole workflow for a single input item.
func (d *Downloader) Process(ctx context.Context, index int, params DownloadParams) (items []Item, err error) {
	mode := params.ReturnFormat
	if mode == "" {
		mode = ReturnJSON
	}

	if !mode.Valid() {
		err = InvalidReturnFormat
		return
	}

	if mode == ReturnFile && !params.FileFormat.Valid() {
		err = InvalidFileFormat
		return
	}

	dl, err := d.client.CreateAndAwait(ctx, params.URL, params.ContentType)
	if err != nil {
		return
	}

	return d.client.FetchResult(ctx, dl, params.URL, mode, params.FileFormat, index)
}

// Execute processes the items with bounded concurrency. Output is in completion
// order.
//
// Without ContinueOnFail the first failure fails the batch and is returned as
// soon as it happens. Items that have not started yet are skipped, so no remote
// job is created for them. Items already running keep going in the background
// until they finish or ctx is done; their output is discarded.
func (d *Downloader) Execute(ctx context.Context, params []DownloadParams, opts ExecuteOptions) (items []Item, err error) {
	if ctx == nil {
		ctx = context.Background()
	} else {
		if err = ctx.Err(); err != nil {
			return
		}
	}

	c := d.client
	settings := c.loadSettings()

	var (
		mu        sync.Mutex
		collected []Item

		failed   atomic.Bool
		failOnce sync.Once
		firstErr error
		failure  = make(chan struct{})

		g errgroup.Group
	)
	g.SetLimit(settings.concurrency())

	fail := func(err error) {
		failOnce.Do(func() {
			firstErr = err
			failed.Store(true)
			close(failure)
		})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		for i, p := range params {
			if failed.Load() {
				break
			}

			g.Go(func() error {
				if failed.Load() {
					return nil
				}

				c.observer.ItemStarted()
				out, err := d.Process(ctx, i, p)
				c.observer.ItemDone(err)

				if err != nil {
					c.Log(ctx, clog.Params{
						Message: "item",
						Level:   slog.LevelDebug,
						Err:     err,

						Values: clog.ParamGroup{
							"index": i,
							"url":   p.URL,
						},
					})

					if !opts.ContinueOnFail {
						fail(err)
						return err
					}

					out = []Item{errorItem(i, err)}
				}

				mu.Lock()
				collected = append(collected, out...)
				mu.Unlock()

				return nil
			})
		}

		g.Wait()
	}()

	select {
	case <-done:
	case <-failure:
	}

	if failed.Load() {
		return nil, firstErr
	}

	return collected, nil
}
