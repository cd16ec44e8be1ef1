package handlers

import (
	"encoding/json"
	"net/http"
)

// ManifestHandler serves GET /manifest.json. The host platform fetches
// the manifest from arbitrary origins, so this route alone is served
// with permissive cross-origin headers.
type ManifestHandler struct {
	deps *Deps
}

// NewManifestHandler creates the manifest handler.
func NewManifestHandler(deps *Deps) *ManifestHandler {
	return &ManifestHandler{deps: deps}
}

// ServeHTTP implements http.Handler.
func (h *ManifestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.deps.Manifest.Current())
}
