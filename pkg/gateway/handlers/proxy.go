package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"seamark-hq/meridian/pkg/gateway/httperr"
	"seamark-hq/meridian/pkg/region"
	"seamark-hq/meridian/pkg/telemetry/tracing"
	"seamark-hq/meridian/pkg/upstream"
)

// proxyRequestBody is the POST /v1/proxy request document. Either
// resourcePath or projectId must be given; projectId is shorthand for
// that project's file listing.
type proxyRequestBody struct {
	ResourcePath string          `json:"resourcePath,omitempty"`
	ProjectID    string          `json:"projectId,omitempty"`
	Region       string          `json:"region,omitempty"`
	Method       string          `json:"method,omitempty"`
	Body         json.RawMessage `json:"body,omitempty"`
}

// ProxyHandler forwards arbitrary vendor calls: resolve the region,
// forward with the carried bearer under retry, and mirror the vendor's
// JSON or a taxonomy error body back.
type ProxyHandler struct {
	deps *Deps
}

// NewProxyHandler creates the POST /v1/proxy handler.
func NewProxyHandler(deps *Deps) *ProxyHandler {
	return &ProxyHandler{deps: deps}
}

// ServeHTTP implements http.Handler.
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		httperr.Write(w, &upstream.ValidationError{Field: "body", Message: "unreadable request body"})
		return
	}

	var req proxyRequestBody
	if err := json.Unmarshal(body, &req); err != nil {
		httperr.Write(w, &upstream.ValidationError{Field: "body", Message: "malformed JSON"})
		return
	}

	resourcePath := req.ResourcePath
	if resourcePath == "" && req.ProjectID != "" {
		resourcePath = fmt.Sprintf("/projects/%s/files", req.ProjectID)
	}
	if resourcePath == "" {
		httperr.Write(w, &upstream.ValidationError{Field: "resourcePath", Message: "resourcePath or projectId required"})
		return
	}

	h.deps.absorbBearer(r)

	reg := region.Parse(req.Region)

	ctx, span := h.deps.startSpan(r.Context(), "gateway.proxy")
	defer span.End()
	span.SetAttributes(
		tracing.Region(string(reg)),
		tracing.ResourcePath(resourcePath),
	)

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var payload []byte
	if len(req.Body) > 0 {
		payload = []byte(req.Body)
	}

	started := time.Now()
	result, err := upstream.WithRetry(ctx, func(ctx context.Context) (*upstream.Result, error) {
		return h.deps.Client.Execute(ctx, upstream.ProxyRequest{
			ResourcePath: resourcePath,
			Region:       reg,
			Method:       method,
			Body:         payload,
		})
	}, h.deps.retryConfig(string(reg)))

	h.deps.recordOutcome(ctx, method, resourcePath, string(reg), result, err, started)

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
