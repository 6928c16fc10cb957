package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/elearn/internal/seed"
)

func TestSeedHandler(t *testing.T) {
	fsys := fstest.MapFS{
		"mock-users.json": &fstest.MapFile{Data: []byte(`[{"id":1}]`)},
		"notes.txt":       &fstest.MapFile{Data: []byte(`secret`)},
	}

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "serves a document", method: http.MethodGet, path: "/data/mock-users.json", wantStatus: http.StatusOK, wantBody: `[{"id":1}]`},
		{name: "unknown document", method: http.MethodGet, path: "/data/mock-books.json", wantStatus: http.StatusNotFound},
		{name: "non-JSON file", method: http.MethodGet, path: "/data/notes.txt", wantStatus: http.StatusNotFound},
		{name: "directory listing", method: http.MethodGet, path: "/data/", wantStatus: http.StatusNotFound},
		{name: "outside the prefix", method: http.MethodGet, path: "/mock-users.json", wantStatus: http.StatusNotFound},
		{name: "other methods", method: http.MethodPost, path: "/data/mock-users.json", wantStatus: http.StatusMethodNotAllowed},
	}

	handler := NewSeedHandler(fsys, "data")
	mux := http.NewServeMux()
	mux.Handle(handler.Pattern(), handler)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
				assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestSeedHandler_ServesHTTPFetcher(t *testing.T) {
	handler := NewSeedHandler(seed.Embedded(), "/data/")
	mux := http.NewServeMux()
	mux.Handle(handler.Pattern(), handler)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fetcher := seed.NewHTTPFetcher(seed.HTTPConfig{BaseURL: srv.URL + "/data"}, nil)
	defer fetcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	got, err := fetcher.Fetch(ctx, "mock-users.json")
	require.NoError(t, err)
	assert.Contains(t, string(got), `"username"`)
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "next")
	})
	handler := CORSMiddleware([]string{"http://localhost:3000"}, next)

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantAllowed string
		wantBody    string
	}{
		{name: "allowed origin", method: http.MethodGet, origin: "http://localhost:3000", wantStatus: http.StatusOK, wantAllowed: "http://localhost:3000", wantBody: "next"},
		{name: "other origin", method: http.MethodGet, origin: "http://evil.example", wantStatus: http.StatusOK, wantBody: "next"},
		{name: "preflight", method: http.MethodOptions, origin: "http://localhost:3000", wantStatus: http.StatusNoContent, wantAllowed: "http://localhost:3000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/data/mock-users.json", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllowed, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}
