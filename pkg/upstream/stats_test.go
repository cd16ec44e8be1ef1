package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"seamark-hq/meridian/pkg/region"
	"seamark-hq/meridian/pkg/token"
)

// fakeVendor serves a project file listing plus per-file details.
func fakeVendor(t *testing.T, files map[string]fileDetail, listHits *int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/projects/p1/files", func(w http.ResponseWriter, r *http.Request) {
		if listHits != nil {
			atomic.AddInt32(listHits, 1)
		}
		body := `{"files":[`
		first := true
		for id, f := range files {
			if !first {
				body += ","
			}
			body += fmt.Sprintf(`{"id":%q,"name":%q}`, id, f.Name)
			first = false
		}
		body += `]}`
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/v2/files/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/v2/files/"):]
		f, ok := files[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if f.Size < 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(fmt.Sprintf(`{"id":%q,"name":%q,"size":%d}`, f.ID, f.Name, f.Size)))
	})
	return httptest.NewServer(mux)
}

func statsOptions() StatsOptions {
	return StatsOptions{
		Retry:    RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond},
		Throttle: ThrottleConfig{MaxConcurrent: 2},
	}
}

func TestProjectStats_Aggregation(t *testing.T) {
	files := map[string]fileDetail{
		"f1": {ID: "f1", Name: "report.PDF", Size: 100},
		"f2": {ID: "f2", Name: "summary.pdf", Size: 50},
		"f3": {ID: "f3", Name: "main.go", Size: 30},
		"f4": {ID: "f4", Name: "README", Size: 7},
	}
	server := fakeVendor(t, files, nil)
	defer server.Close()

	carrier := token.NewCarrier()
	carrier.Set("tok")
	client := newTestClient(server.URL, carrier)

	stats, err := client.ProjectStats(context.Background(), "p1", region.US, statsOptions())
	if err != nil {
		t.Fatalf("ProjectStats() error: %v", err)
	}

	if stats.TotalFiles != 4 {
		t.Errorf("TotalFiles = %d, want 4", stats.TotalFiles)
	}
	if stats.TotalBytes != 187 {
		t.Errorf("TotalBytes = %d, want 187", stats.TotalBytes)
	}
	if stats.SkippedFiles != 0 {
		t.Errorf("SkippedFiles = %d, want 0", stats.SkippedFiles)
	}

	pdf := stats.ByExtension[".pdf"]
	if pdf == nil || pdf.Count != 2 || pdf.Bytes != 150 {
		t.Errorf("ByExtension[.pdf] = %+v, want count 2, bytes 150", pdf)
	}
	goStat := stats.ByExtension[".go"]
	if goStat == nil || goStat.Count != 1 || goStat.Bytes != 30 {
		t.Errorf("ByExtension[.go] = %+v, want count 1, bytes 30", goStat)
	}
	none := stats.ByExtension["(none)"]
	if none == nil || none.Count != 1 || none.Bytes != 7 {
		t.Errorf("ByExtension[(none)] = %+v, want count 1, bytes 7", none)
	}
}

func TestProjectStats_SkipsFailedDetails(t *testing.T) {
	files := map[string]fileDetail{
		"f1": {ID: "f1", Name: "good.txt", Size: 10},
		"f2": {ID: "f2", Name: "broken.txt", Size: -1}, // detail endpoint fails
	}
	server := fakeVendor(t, files, nil)
	defer server.Close()

	carrier := token.NewCarrier()
	carrier.Set("tok")
	client := newTestClient(server.URL, carrier)

	stats, err := client.ProjectStats(context.Background(), "p1", region.US, statsOptions())
	if err != nil {
		t.Fatalf("ProjectStats() error: %v", err)
	}

	if stats.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", stats.TotalFiles)
	}
	if stats.SkippedFiles != 1 {
		t.Errorf("SkippedFiles = %d, want 1", stats.SkippedFiles)
	}
	if stats.TotalBytes != 10 {
		t.Errorf("TotalBytes = %d, want 10 (failed file excluded)", stats.TotalBytes)
	}
}

func TestProjectStats_MissingProjectNotRetried(t *testing.T) {
	hits := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	carrier := token.NewCarrier()
	carrier.Set("tok")
	client := newTestClient(server.URL, carrier)

	_, err := client.ProjectStats(context.Background(), "p1", region.US, statsOptions())

	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("listing retried on 404: %d calls, want 1", n)
	}
}

func TestProjectStats_ListingRetriedOnServerError(t *testing.T) {
	hits := int32(0)

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/projects/p1/files", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"files":[{"id":"f1","name":"a.txt"}]}`))
	})
	mux.HandleFunc("/v2/files/f1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"f1","name":"a.txt","size":5}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	carrier := token.NewCarrier()
	carrier.Set("tok")
	client := newTestClient(server.URL, carrier)

	stats, err := client.ProjectStats(context.Background(), "p1", region.US, statsOptions())
	if err != nil {
		t.Fatalf("ProjectStats() error: %v", err)
	}
	if stats.TotalBytes != 5 {
		t.Errorf("TotalBytes = %d, want 5", stats.TotalBytes)
	}
	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Errorf("listing attempted %d times, want 3", n)
	}
}

func TestProjectStats_EmptyProjectID(t *testing.T) {
	carrier := token.NewCarrier()
	carrier.Set("tok")
	client := newTestClient("http://unused.invalid", carrier)

	_, err := client.ProjectStats(context.Background(), "", region.US, statsOptions())

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
