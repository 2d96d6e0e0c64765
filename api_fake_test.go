package ycd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

//////////////////////////////////////////////////

const testAPIKey = "test-key"

type fakeSave struct {
	contentType string
	body        string
}

// fakeAPI mimics the downloader API. Every job walks through statuses, one
// per poll, and its result is served by save.
type fakeAPI struct {
	mu sync.Mutex

	statuses []Status
	save     fakeSave

	nextID   int
	polls    map[string]int
	saves    map[string]int
	accepts  []string
	created  []createDownloadRequest
	limits   []string
	inFlight int
	maxInFl  int
}

func newFakeAPI(t *testing.T, statuses []Status, save fakeSave) (*fakeAPI, *httptest.Server) {
	t.Helper()

	f := &fakeAPI{
		statuses: statuses,
		save:     save,
		polls:    map[string]int{},
		saves:    map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/user", f.handleUser)
	mux.HandleFunc("POST /v1/downloads", f.handleCreate)
	mux.HandleFunc("GET /v1/downloads", f.handleList)
	mux.HandleFunc("GET /v1/downloads/{id}", f.handleGet)
	mux.HandleFunc("GET /v1/downloads/{id}/save", f.handleSave)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != testAPIKey {
			http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
			return
		}

		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	return f, srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) handleUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"email": "user@example.com"})
}

func (f *fakeAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if strings.Contains(req.URL, "fail") {
		http.Error(w, `{"message":"invalid url"}`, http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.nextID++
	id := fmt.Sprintf("job-%d", f.nextID)
	f.created = append(f.created, req)
	f.inFlight++
	f.maxInFl = max(f.maxInFl, f.inFlight)
	f.mu.Unlock()

	writeJSON(w, map[string]any{
		"id":          id,
		"status":      StatusCreated,
		"url":         req.URL,
		"contentType": req.ContentType,
	})
}

func (f *fakeAPI) handleList(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.limits = append(f.limits, r.URL.Query().Get("limit"))
	f.mu.Unlock()

	writeJSON(w, map[string]any{
		"data": []any{
			map[string]any{"id": 1, "status": "finished"},
			map[string]any{"id": "2", "status": "downloading"},
		},
	})
}

func (f *fakeAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	f.mu.Lock()
	n := f.polls[id]
	f.polls[id]++
	status := StatusFinished
	if len(f.statuses) > 0 {
		status = f.statuses[min(n, len(f.statuses)-1)]
	}
	f.mu.Unlock()

	writeJSON(w, map[string]any{
		"id":     id,
		"status": status,
	})
}

func (f *fakeAPI) handleSave(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	f.mu.Lock()
	f.saves[id]++
	f.accepts = append(f.accepts, r.Header.Get("Accept"))
	f.inFlight--
	f.mu.Unlock()

	// Leave other workers time to pile up.
	time.Sleep(5 * time.Millisecond)

	if f.save.contentType != "" {
		w.Header().Set("Content-Type", f.save.contentType)
	} else {
		// Suppress content sniffing.
		w.Header()["Content-Type"] = nil
	}
	w.Write([]byte(f.save.body))
}

func (f *fakeAPI) pollCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.polls[id]
}

func (f *fakeAPI) saveCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.saves[id]
}

//////////////////////////////////////////////////

var testSettings = Settings{
	PollInterval: 5 * time.Millisecond,
	Concurrency:  5,
	ListLimit:    50,

	RequestTimeoutSeconds: 5,
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...ConfigOption) *Client {
	t.Helper()

	opts = append([]ConfigOption{
		WithCredential(Credential{APIKey: testAPIKey, BaseURL: srv.URL}),
		WithSettings(testSettings),
	}, opts...)

	c, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	return c
}

type recordingObserver struct {
	mu sync.Mutex

	created  map[ContentKind]int
	polled   []Status
	finished []Status
	results  map[string]int
	started  int
	failed   int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		created: map[ContentKind]int{},
		results: map[string]int{},
	}
}

func (o *recordingObserver) JobCreated(kind ContentKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created[kind]++
}

func (o *recordingObserver) JobPolled(status Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.polled = append(o.polled, status)
}

func (o *recordingObserver) JobFinished(status Status, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, status)
}

func (o *recordingObserver) ResultMaterialized(kind string, items int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results[kind] += items
}

func (o *recordingObserver) ItemStarted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started++
}

func (o *recordingObserver) ItemDone(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.failed++
	}
}

func (o *recordingObserver) startedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.started
}

func (f *fakeAPI) createdRequests() []createDownloadRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]createDownloadRequest(nil), f.created...)
}

func (f *fakeAPI) limitValues() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.limits...)
}

func (f *fakeAPI) acceptValues() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.accepts...)
}

func (f *fakeAPI) maxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.maxInFl
}
