package ycd

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubpy/crawly/cclient"
)

const testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func newTestDownloader(t *testing.T, statuses []Status, save fakeSave, opts ...ConfigOption) (*fakeAPI, *Downloader) {
	t.Helper()

	f, srv := newFakeAPI(t, statuses, save)
	d, err := NewDownloader(newTestClient(t, srv, opts...))
	require.NoError(t, err)

	return f, d
}

func TestNewDownloaderNilClient(t *testing.T) {
	_, err := NewDownloader(nil)
	assert.ErrorIs(t, err, NilClient)
}

func TestDownloaderSavesOnceAfterFinish(t *testing.T) {
	f, d := newTestDownloader(t,
		[]Status{StatusDownloading, StatusFinished},
		fakeSave{contentType: "application/json", body: `{"id":"c1"}`},
	)

	items, err := d.Process(context.Background(), 0, DownloadParams{
		URL:         testVideoURL,
		ContentType: ContentVideo,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c1", items[0].JSON["id"])

	assert.Equal(t, 2, f.pollCount("job-1"))
	assert.Equal(t, 1, f.saveCount("job-1"))
	assert.Equal(t, []string{string(FormatJSON)}, f.acceptValues())
}

func TestDownloaderSavesAfterErrorStatus(t *testing.T) {
	f, d := newTestDownloader(t,
		[]Status{StatusError},
		fakeSave{contentType: "application/json", body: `{"message":"video unavailable"}`},
	)

	items, err := d.Process(context.Background(), 0, DownloadParams{
		URL:         testVideoURL,
		ContentType: ContentVideo,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "video unavailable", items[0].JSON["message"])
	assert.Equal(t, 1, f.saveCount("job-1"))
}

func TestDownloaderJSONArray(t *testing.T) {
	obs := newRecordingObserver()
	_, d := newTestDownloader(t,
		[]Status{StatusFinished},
		fakeSave{contentType: "application/json; charset=utf-8", body: `[{"id":"c1"},{"id":"c2"},{"id":"c3"},"loose"]`},
		WithObserver(obs),
	)

	items, err := d.Process(context.Background(), 3, DownloadParams{
		URL:          testVideoURL,
		ContentType:  ContentVideo,
		ReturnFormat: ReturnJSON,
	})
	require.NoError(t, err)
	require.Len(t, items, 4)

	for i, item := range items {
		assert.Equal(t, 3, item.PairedItem)
		assert.Nil(t, item.Binary)

		if i < 3 {
			assert.Equal(t, fmt.Sprintf("c%d", i+1), item.JSON["id"])
		}
	}
	assert.Equal(t, "loose", items[3].JSON["value"])
	assert.Equal(t, 4, obs.results[ResultKindJSON])
}

func TestDownloaderNonJSONBecomesBinary(t *testing.T) {
	_, d := newTestDownloader(t,
		[]Status{StatusFinished},
		fakeSave{contentType: "application/zip", body: "PK\x03\x04archive"},
	)

	items, err := d.Process(context.Background(), 0, DownloadParams{
		URL:         "https://www.youtube.com/@someone",
		ContentType: ContentChannel,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, true, item.JSON["success"])
	assert.Equal(t, "job-1", item.JSON["downloadId"])
	assert.Equal(t, "https://www.youtube.com/@someone", item.JSON["url"])
	assert.Equal(t, nonJSONWarning, item.JSON["warning"])

	bin := item.Binary[BinaryKey]
	require.NotNil(t, bin)
	assert.Equal(t, "download_job-1.zip", bin.FileName)
	assert.Equal(t, "application/zip", bin.MimeType)
	assert.Equal(t, "zip", bin.FileExtension)
	assert.Equal(t, "PK\x03\x04archive", string(bin.Data))
	assert.Equal(t, len("PK\x03\x04archive"), bin.FileSize)
}

func TestDownloaderFileMode(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		format      FileFormat
		fileName    string
		mimeType    string
	}{
		{"csv", "text/csv", FormatCSV, "download_job-1.csv", "text/csv"},
		{"excel", "", FormatExcel, "download_job-1.xlsx", string(FormatExcel)},
		{"zip for bulk kinds", "application/zip", FormatCSV, "download_job-1.zip", "application/zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, d := newTestDownloader(t,
				[]Status{StatusFinished},
				fakeSave{contentType: tt.contentType, body: "payload"},
			)

			items, err := d.Process(context.Background(), 1, DownloadParams{
				URL:          testVideoURL,
				ContentType:  ContentVideo,
				ReturnFormat: ReturnFile,
				FileFormat:   tt.format,
			})
			require.NoError(t, err)
			require.Len(t, items, 1)

			item := items[0]
			assert.Equal(t, 1, item.PairedItem)
			assert.Equal(t, "finished", item.JSON["status"])
			assert.Equal(t, testVideoURL, item.JSON["url"])

			bin := item.Binary[BinaryKey]
			require.NotNil(t, bin)
			assert.Equal(t, tt.fileName, bin.FileName)
			assert.Equal(t, tt.mimeType, bin.MimeType)
			assert.Equal(t, []string{string(tt.format)}, f.acceptValues())
		})
	}
}

func TestDownloaderRejectsBadParams(t *testing.T) {
	f, d := newTestDownloader(t, nil, fakeSave{})

	_, err := d.Process(context.Background(), 0, DownloadParams{
		URL:          testVideoURL,
		ContentType:  ContentVideo,
		ReturnFormat: "xml",
	})
	assert.ErrorIs(t, err, InvalidReturnFormat)

	_, err = d.Process(context.Background(), 0, DownloadParams{
		URL:          testVideoURL,
		ContentType:  ContentVideo,
		ReturnFormat: ReturnFile,
		FileFormat:   "application/pdf",
	})
	assert.ErrorIs(t, err, InvalidFileFormat)

	assert.Empty(t, f.createdRequests())
}

func TestDownloaderExecuteBoundedConcurrency(t *testing.T) {
	tests := []struct {
		name        string
		concurrency int
		items       int
	}{
		{"default limit", 5, 10},
		{"narrow limit", 2, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings
			settings.Concurrency = tt.concurrency

			obs := newRecordingObserver()
			f, d := newTestDownloader(t,
				[]Status{StatusDownloading, StatusDownloading, StatusDownloading, StatusDownloading, StatusFinished},
				fakeSave{contentType: "application/json", body: `{"ok":true}`},
				WithSettings(settings),
				WithObserver(obs),
			)

			params := make([]DownloadParams, tt.items)
			for i := range params {
				params[i] = DownloadParams{URL: testVideoURL, ContentType: ContentVideo}
			}

			items, err := d.Execute(context.Background(), params, ExecuteOptions{})
			require.NoError(t, err)
			require.Len(t, items, tt.items)

			paired := map[int]bool{}
			for _, item := range items {
				paired[item.PairedItem] = true
			}
			assert.Len(t, paired, tt.items)

			assert.Equal(t, tt.concurrency, f.maxInFlight())
			assert.Equal(t, tt.items, obs.started)
			assert.Equal(t, 0, obs.failed)
		})
	}
}

func TestDownloaderExecuteContinueOnFail(t *testing.T) {
	_, d := newTestDownloader(t,
		[]Status{StatusFinished},
		fakeSave{contentType: "application/json", body: `{"ok":true}`},
	)

	params := []DownloadParams{
		{URL: testVideoURL, ContentType: ContentVideo},
		{URL: "https://www.youtube.com/watch?v=fail", ContentType: ContentVideo},
		{URL: testVideoURL, ContentType: ContentVideo},
	}

	items, err := d.Execute(context.Background(), params, ExecuteOptions{ContinueOnFail: true})
	require.NoError(t, err)
	require.Len(t, items, len(params))

	var failures []Item
	for _, item := range items {
		if _, ok := item.Error(); ok {
			failures = append(failures, item)
		}
	}
	require.Len(t, failures, 1)

	msg, _ := failures[0].Error()
	assert.Equal(t, 1, failures[0].PairedItem)
	assert.Contains(t, msg, "400")
}

func TestDownloaderExecuteFailsBatch(t *testing.T) {
	_, d := newTestDownloader(t,
		[]Status{StatusFinished},
		fakeSave{contentType: "application/json", body: `{"ok":true}`},
	)

	params := []DownloadParams{
		{URL: testVideoURL, ContentType: ContentVideo},
		{URL: "https://www.youtube.com/watch?v=fail", ContentType: ContentVideo},
	}

	items, err := d.Execute(context.Background(), params, ExecuteOptions{})
	assert.Nil(t, items)

	var apiErr *cclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
}

func TestDownloaderExecuteReturnsFirstErrorPromptly(t *testing.T) {
	// The first job never leaves "downloading".
	_, d := newTestDownloader(t,
		[]Status{StatusDownloading},
		fakeSave{contentType: "application/json", body: `{"ok":true}`},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	params := []DownloadParams{
		{URL: testVideoURL, ContentType: ContentVideo},
		{URL: "https://www.youtube.com/watch?v=fail", ContentType: ContentVideo},
	}

	start := time.Now()
	items, err := d.Execute(ctx, params, ExecuteOptions{})
	elapsed := time.Since(start)

	assert.Nil(t, items)
	assert.Less(t, elapsed, time.Second)

	var apiErr *cclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
}

func TestDownloaderExecuteSkipsPendingItemsAfterFailure(t *testing.T) {
	settings := testSettings
	settings.Concurrency = 1

	obs := newRecordingObserver()
	f, d := newTestDownloader(t,
		[]Status{StatusFinished},
		fakeSave{contentType: "application/json", body: `{"ok":true}`},
		WithSettings(settings),
		WithObserver(obs),
	)

	params := []DownloadParams{
		{URL: "https://www.youtube.com/watch?v=fail", ContentType: ContentVideo},
		{URL: testVideoURL, ContentType: ContentVideo},
		{URL: testVideoURL, ContentType: ContentVideo},
	}

	items, err := d.Execute(context.Background(), params, ExecuteOptions{})
	require.Error(t, err)
	assert.Nil(t, items)

	assert.Never(t, func() bool {
		return len(f.createdRequests()) > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, 1, obs.startedCount())
}

//////////////////////////////////////////////////

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memStore) Store(_ context.Context, id string, bin *BinaryData) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.objects == nil {
		s.objects = map[string][]byte{}
	}

	ref := "mem://" + id + "/" + bin.FileName
	s.objects[ref] = bin.Data

	return ref, nil
}

func TestDownloaderBinaryDataStore(t *testing.T) {
	store := &memStore{}
	_, d := newTestDownloader(t,
		[]Status{StatusFinished},
		fakeSave{contentType: "text/csv", body: "a,b\n"},
		WithBinaryDataStore(store),
	)

	items, err := d.Process(context.Background(), 0, DownloadParams{
		URL:          testVideoURL,
		ContentType:  ContentVideo,
		ReturnFormat: ReturnFile,
		FileFormat:   FormatCSV,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	bin := items[0].Binary[BinaryKey]
	require.NotNil(t, bin)
	assert.Nil(t, bin.Data)
	assert.Equal(t, 4, bin.FileSize)
	assert.Equal(t, "a,b\n", string(store.objects[bin.ID]))
}
