package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"seamark-hq/meridian/pkg/gateway/httperr"
	"seamark-hq/meridian/pkg/region"
	"seamark-hq/meridian/pkg/telemetry/tracing"
	"seamark-hq/meridian/pkg/upstream"
)

// FilesHandler serves GET /v1/projects/{projectId}/files: the proxied
// file listing for one project, region from the query string.
type FilesHandler struct {
	deps *Deps
}

// NewFilesHandler creates the file listing handler.
func NewFilesHandler(deps *Deps) *FilesHandler {
	return &FilesHandler{deps: deps}
}

// ServeHTTP implements http.Handler.
func (h *FilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	if projectID == "" {
		httperr.Write(w, &upstream.ValidationError{Field: "projectId", Message: "must not be empty"})
		return
	}

	h.deps.absorbBearer(r)

	reg := region.Parse(r.URL.Query().Get("region"))
	resourcePath := fmt.Sprintf("/projects/%s/files", projectID)

	ctx, span := h.deps.startSpan(r.Context(), "gateway.files")
	defer span.End()
	span.SetAttributes(
		tracing.Region(string(reg)),
		tracing.ResourcePath(resourcePath),
	)

	started := time.Now()
	result, err := upstream.WithRetry(ctx, func(ctx context.Context) (*upstream.Result, error) {
		return h.deps.Client.Execute(ctx, upstream.ProxyRequest{
			ResourcePath: resourcePath,
			Region:       reg,
		})
	}, h.deps.retryConfig(string(reg)))

	h.deps.recordOutcome(ctx, http.MethodGet, resourcePath, string(reg), result, err, started)

	if err != nil {
		tracing.SetError(span, err)
		span.SetAttributes(tracing.ErrorKind(upstream.Kind(err)))
		httperr.Write(w, err)
		return
	}

	span.SetAttributes(
		tracing.StatusCode(result.StatusCode),
		tracing.Attempts(result.Attempts),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.StatusCode)
	_, _ = w.Write(result.Body)
}

// StatsHandler serves GET /v1/projects/{projectId}/stats: the throttled
// per-file aggregation over the project's listing.
type StatsHandler struct {
	deps *Deps
}

// NewStatsHandler creates the project stats handler.
func NewStatsHandler(deps *Deps) *StatsHandler {
	return &StatsHandler{deps: deps}
}

// ServeHTTP implements http.Handler.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	if projectID == "" {
		httperr.Write(w, &upstream.ValidationError{Field: "projectId", Message: "must not be empty"})
		return
	}

	h.deps.absorbBearer(r)

	reg := region.Parse(r.URL.Query().Get("region"))
	resourcePath := fmt.Sprintf("/projects/%s/stats", projectID)

	ctx, span := h.deps.startSpan(r.Context(), "gateway.stats")
	defer span.End()
	span.SetAttributes(
		tracing.Region(string(reg)),
		tracing.ResourcePath(resourcePath),
	)

	started := time.Now()
	stats, err := h.deps.Client.ProjectStats(ctx, projectID, reg, upstream.StatsOptions{
		Retry:    h.deps.retryConfig(string(reg)),
		Throttle: h.deps.throttleConfig(),
	})

	h.deps.recordOutcome(ctx, http.MethodGet, resourcePath, string(reg), nil, err, started)

	if err != nil {
		tracing.SetError(span, err)
		span.SetAttributes(tracing.ErrorKind(upstream.Kind(err)))
		httperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}
