package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"seamark-hq/meridian/pkg/upstream"
)

// serveWithPattern runs a handler under the mux pattern it is mounted
// with in production, so PathValue works.
func serveWithPattern(pattern string, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.Handle(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestFilesHandler(t *testing.T) {
	var gotPath string
	deps := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"files":[{"id":"f1","name":"a.pdf"}]}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/projects/9/files?region=apac", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := serveWithPattern("GET /v1/projects/{projectId}/files", NewFilesHandler(deps), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if gotPath != "/v2/projects/9/files" {
		t.Errorf("vendor path = %q, want /v2/projects/9/files", gotPath)
	}
}

func TestStatsHandler(t *testing.T) {
	deps := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/projects/9/files":
			w.Write([]byte(`{"files":[{"id":"f1","name":"a.pdf"},{"id":"f2","name":"b.pdf"},{"id":"f3","name":"c.txt"}]}`))
		case "/v2/files/f1":
			w.Write([]byte(`{"id":"f1","name":"a.pdf","size":100}`))
		case "/v2/files/f2":
			w.Write([]byte(`{"id":"f2","name":"b.pdf","size":50}`))
		case "/v2/files/f3":
			w.Write([]byte(`{"id":"f3","name":"c.txt","size":7}`))
		default:
			http.NotFound(w, r)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/projects/9/stats", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := serveWithPattern("GET /v1/projects/{projectId}/stats", NewStatsHandler(deps), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var stats upstream.ProjectStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("malformed stats body: %v", err)
	}
	if stats.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", stats.TotalFiles)
	}
	if stats.TotalBytes != 157 {
		t.Errorf("TotalBytes = %d, want 157", stats.TotalBytes)
	}
	if got := stats.ByExtension[".pdf"]; got == nil || got.Count != 2 || got.Bytes != 150 {
		t.Errorf(".pdf stat = %+v", got)
	}
	if stats.SkippedFiles != 0 {
		t.Errorf("SkippedFiles = %d, want 0", stats.SkippedFiles)
	}
}

func TestStatsHandler_UpstreamFailure(t *testing.T) {
	deps := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/projects/missing/stats", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := serveWithPattern("GET /v1/projects/{projectId}/stats", NewStatsHandler(deps), req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := decodeError(t, rec).Error.Code; got != "not_found" {
		t.Errorf("code = %q, want not_found", got)
	}
}
