package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"seamark-hq/meridian/pkg/region"
)

// fileEntry is one item of the vendor's project file listing.
type fileEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// fileDetail is the vendor's per-file metadata document.
type fileDetail struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ExtensionStat aggregates the files sharing one extension.
type ExtensionStat struct {
	Count int   `json:"count"`
	Bytes int64 `json:"bytes"`
}

// ProjectStats summarizes a project's files as reported by the vendor.
type ProjectStats struct {
	ProjectID   string                    `json:"projectId"`
	Region      region.Region             `json:"region"`
	TotalFiles  int                       `json:"totalFiles"`
	TotalBytes  int64                     `json:"totalBytes"`
	ByExtension map[string]*ExtensionStat `json:"byExtension"`

	// SkippedFiles counts files whose detail fetch failed; they appear
	// in TotalFiles but contribute no bytes.
	SkippedFiles int `json:"skippedFiles"`
}

// StatsOptions tunes stats collection.
type StatsOptions struct {
	// Retry wraps the listing call.
	Retry RetryConfig

	// Throttle bounds the parallel per-file detail fetches.
	Throttle ThrottleConfig
}

// ProjectStats fetches a project's file listing and aggregates count,
// total size, and a per-extension breakdown.
//
// The listing call runs under the retry wrapper; the per-file detail
// fetches run in throttled windows, each a single attempt. A file whose
// detail fetch fails is counted and skipped rather than failing the
// whole aggregation.
func (c *Client) ProjectStats(ctx context.Context, projectID string, r region.Region, opts StatsOptions) (*ProjectStats, error) {
	if projectID == "" {
		return nil, &ValidationError{Field: "projectId", Message: "must not be empty"}
	}

	listing, err := WithRetry(ctx, func(ctx context.Context) (*Result, error) {
		return c.Execute(ctx, ProxyRequest{
			ResourcePath: fmt.Sprintf("/projects/%s/files", projectID),
			Region:       r,
		})
	}, opts.Retry)
	if err != nil {
		return nil, err
	}

	var page struct {
		Files []fileEntry `json:"files"`
	}
	if err := json.Unmarshal(listing.Body, &page); err != nil {
		return nil, &HTTPError{
			StatusCode: listing.StatusCode,
			Message:    fmt.Sprintf("malformed file listing: %v", err),
		}
	}

	tasks := make([]Operation, len(page.Files))
	for i, f := range page.Files {
		fileID := f.ID
		tasks[i] = func(ctx context.Context) (*Result, error) {
			return c.Execute(ctx, ProxyRequest{
				ResourcePath: fmt.Sprintf("/files/%s", fileID),
				Region:       r,
			})
		}
	}
	outcomes := RunThrottled(ctx, tasks, opts.Throttle)

	stats := &ProjectStats{
		ProjectID:   projectID,
		Region:      r,
		TotalFiles:  len(page.Files),
		ByExtension: make(map[string]*ExtensionStat),
	}

	for i, outcome := range outcomes {
		if outcome.Err != nil {
			stats.SkippedFiles++
			slog.Debug("skipping file in stats aggregation",
				"file_id", page.Files[i].ID,
				"kind", Kind(outcome.Err),
			)
			continue
		}

		var detail fileDetail
		if err := json.Unmarshal(outcome.Result.Body, &detail); err != nil {
			stats.SkippedFiles++
			continue
		}

		ext := extensionOf(detail.Name)
		stat, ok := stats.ByExtension[ext]
		if !ok {
			stat = &ExtensionStat{}
			stats.ByExtension[ext] = stat
		}
		stat.Count++
		stat.Bytes += detail.Size
		stats.TotalBytes += detail.Size
	}

	return stats, nil
}

// extensionOf normalizes a file name to its lowercase extension.
// Names without an extension group under "(none)".
func extensionOf(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return "(none)"
	}
	return ext
}
