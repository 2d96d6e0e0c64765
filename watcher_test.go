package ycd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubpy/crawly"
)

func newTestWatcher(t *testing.T, statuses []Status) (*fakeAPI, *Watcher) {
	t.Helper()

	f, srv := newFakeAPI(t, statuses, fakeSave{})
	w, err := NewWatcher(newTestClient(t, srv))
	require.NoError(t, err)

	return f, w
}

func TestHandle(t *testing.T) {
	assert.True(t, JobID("abc").Valid())
	assert.False(t, JobID("").Valid())
	assert.True(t, SourceURL(testVideoURL, ContentVideo).Valid())
	assert.False(t, SourceURL(testVideoURL, "").Valid())
	assert.False(t, Handle{}.Valid())

	assert.True(t, JobID("abc").Equal(JobID("abc")))
	assert.False(t, JobID("abc").Equal(SourceURL("abc", ContentVideo)))

	assert.Equal(t, `{DownloadID:"abc"}`, JobID("abc").String())
	assert.Equal(t, `{SourceURL:"u":video}`, SourceURL(" u ", ContentVideo).String())
}

func TestWatcherOrderCreatesJob(t *testing.T) {
	f, w := newTestWatcher(t, nil)

	source := SourceURL(testVideoURL, ContentVideo)
	order := &crawly.Order{Command: crawly.TrackingCommandStart, Handle: source}
	var result crawly.TrackingResult

	require.NoError(t, w.orderHandler(context.Background(), order, &result))

	assert.Equal(t, JobID("job-1"), result.Entity.Value.Handle)
	id, ok := w.DownloadID(source)
	require.True(t, ok)
	assert.Equal(t, DownloadID("job-1"), id)

	data, ok := ResultEntityData(result)
	require.True(t, ok)
	assert.Equal(t, testVideoURL, data.Source)
	assert.Equal(t, StatusCreated, data.Status())

	// Retried orders reuse the job.
	result = crawly.TrackingResult{}
	require.NoError(t, w.orderHandler(context.Background(), order, &result))
	assert.Equal(t, JobID("job-1"), result.Entity.Value.Handle)
	assert.Len(t, f.createdRequests(), 1)
}

func TestWatcherOrderRejectsBadHandles(t *testing.T) {
	_, w := newTestWatcher(t, nil)

	var result crawly.TrackingResult
	err := w.orderHandler(context.Background(), &crawly.Order{Handle: JobID("")}, &result)
	assert.ErrorIs(t, err, crawly.InvalidHandle)

	err = w.orderHandler(context.Background(), &crawly.Order{Handle: SourceURL(" ", ContentVideo)}, &result)
	assert.ErrorIs(t, err, crawly.InvalidHandle)
}

func TestWatcherEntityPolls(t *testing.T) {
	_, w := newTestWatcher(t, []Status{StatusDownloading, StatusDownloading, StatusFinished})

	entity := &crawly.Entity{Handle: JobID("job-1")}

	var result crawly.TrackingResult
	require.NoError(t, w.entityHandler(context.Background(), entity, &result))
	data := entity.Data.(EntityData)
	assert.Equal(t, StatusDownloading, data.Status())
	assert.True(t, data.Changed)
	assert.Equal(t, 1, data.Polls)
	assert.Equal(t, crawly.TrackingActionNone, result.Entity.Action)

	result = crawly.TrackingResult{}
	require.NoError(t, w.entityHandler(context.Background(), entity, &result))
	data = entity.Data.(EntityData)
	assert.False(t, data.Changed)
	assert.Equal(t, crawly.TrackingActionNone, result.Entity.Action)

	result = crawly.TrackingResult{}
	require.NoError(t, w.entityHandler(context.Background(), entity, &result))
	data = entity.Data.(EntityData)
	assert.Equal(t, StatusFinished, data.Status())
	assert.True(t, data.Changed)
	assert.Equal(t, 3, data.Polls)
	assert.Equal(t, crawly.TrackingActionRemove, result.Entity.Action)
}

func TestWatcherKeepsFinishedJobs(t *testing.T) {
	_, w := newTestWatcher(t, []Status{StatusError})

	settings := w.Settings()
	settings.UntrackFinished = false
	w.SetSettings(settings)

	entity := &crawly.Entity{Handle: JobID("job-1")}
	var result crawly.TrackingResult
	require.NoError(t, w.entityHandler(context.Background(), entity, &result))

	assert.Equal(t, StatusError, entity.Data.(EntityData).Status())
	assert.Equal(t, crawly.TrackingActionNone, result.Entity.Action)
}

func TestWatcherCanonicalHandle(t *testing.T) {
	_, w := newTestWatcher(t, nil)

	source := SourceURL(testVideoURL, ContentVideo)
	assert.Equal(t, source, w.canonicalHandle(source))

	w.storeDownloadID(source, "job-3")
	assert.Equal(t, JobID("job-3"), w.canonicalHandle(source))
	assert.Equal(t, JobID("job-4"), w.canonicalHandle(JobID("job-4")))
}
