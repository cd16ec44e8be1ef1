// Package handlers implements the gateway's HTTP endpoints: the proxy
// surface (/v1/proxy, project files and stats), host-platform event
// ingestion, and manifest serving.
package handlers
