package core

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/metrics"
)

// fakeBackend records every request and answers from a handler.
type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

func (f *fakeBackend) record(r *http.Request) recordedRequest {
	rr := recordedRequest{Method: r.Method, Path: r.URL.Path}
	if r.Header.Get("Content-Type") == "application/json" {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &rr.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rr)
	f.mu.Unlock()
	return rr
}

func (f *fakeBackend) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

// newTestService starts an httptest backend answering with h and returns a
// Service wired to it.
func newTestService(t *testing.T, h func(w http.ResponseWriter, r *http.Request, rr recordedRequest), opts ...Option) (*Service, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rr := fb.record(r)
		h(w, r, rr)
	}))
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL)
	require.NoError(t, err)

	opts = append([]Option{WithMetrics(metrics.New(prometheus.NewRegistry()))}, opts...)
	return NewService(client, opts...), fb
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
