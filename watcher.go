package ycd

import (
	"context"
	"time"

	"github.com/rubpy/crawly"
	"github.com/rubpy/crawly/csync"
)

//////////////////////////////////////////////////

// Watcher polls many jobs on a crawly session. Every pass fetches the status
// of each tracked job and publishes a crawly.Result to listeners; jobs that
// are no longer pending are dropped from tracking.
type Watcher struct {
	crawly.Crawler

	client *Client

	downloadIDCache csync.Map[Handle, DownloadID]

	settings csync.Value[WatcherSettings]
}

type WatcherSettings struct {
	crawly.CrawlerSettings

	// Stop tracking a job once its status is no longer pending.
	UntrackFinished bool
}

var DefaultWatcherSettings = WatcherSettings{
	CrawlerSettings: crawly.CrawlerSettings{
		TrackingOrderTimeout:         45 * time.Second,
		MinimumTrackingOrderDelay:    10 * time.Second,
		MaximumTrackingOrderAttempts: 3,

		TrackingTimeout:         30 * time.Second,
		MinimumTrackingDelay:    DefaultSettings.PollInterval,
		MaximumTrackingAttempts: 10,
	},

	UntrackFinished: true,
}

func NewWatcher(client *Client) (*Watcher, error) {
	if client == nil {
		return nil, NilClient
	}

	w := &Watcher{
		client: client,
	}

	if logger := client.Logger(); logger != nil {
		w.Crawler.SetLogger(logger.WithGroup("watcher"))
	}
	crawly.SetCrawlerHandlers(&w.Crawler, crawly.CrawlerHandlers{
		Order:  w.orderHandler,
		Entity: w.entityHandler,
	})

	w.SetSettings(DefaultWatcherSettings)

	return w, nil
}

//////////////////////////////////////////////////

func (w *Watcher) loadSettings() WatcherSettings {
	return w.settings.Load()
}

func (w *Watcher) setSettings(settings WatcherSettings) {
	w.settings.Store(settings)
	crawly.SetCrawlerSettings(&w.Crawler, settings.CrawlerSettings)
}

func (w *Watcher) Settings() WatcherSettings {
	return w.loadSettings()
}

func (w *Watcher) SetSettings(settings WatcherSettings) {
	w.setSettings(settings)
}

//////////////////////////////////////////////////

// DownloadID returns the job created for a source URL handle, if any.
func (w *Watcher) DownloadID(handle Handle) (id DownloadID, ok bool) {
	return w.loadDownloadID(handle)
}

func (w *Watcher) loadDownloadID(handle Handle) (id DownloadID, ok bool) {
	return w.downloadIDCache.Load(handle)
}

func (w *Watcher) storeDownloadID(handle Handle, id DownloadID) {
	w.downloadIDCache.Store(handle, id)
}

func (w *Watcher) canonicalHandle(handle Handle) Handle {
	if handle.Type == HandleSourceURL {
		if id, ok := w.loadDownloadID(handle); ok {
			handle = JobID(id)
		}
	}

	return handle
}

func (w *Watcher) IsTracked(handle Handle) bool {
	return w.Crawler.IsTracked(w.canonicalHandle(handle))
}

func (w *Watcher) Untrack(ctx context.Context, handle Handle) (tracked bool, err error) {
	return w.Crawler.Untrack(ctx, w.canonicalHandle(handle))
}

// ResultEntityData extracts the job state from a tracking result.
func ResultEntityData(tr crawly.TrackingResult) (data EntityData, ok bool) {
	data, ok = tr.Entity.Value.Data.(EntityData)
	return
}
