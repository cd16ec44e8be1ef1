// Package middleware provides the gateway's HTTP middleware chain:
// panic recovery, request logging, request IDs, CORS restriction,
// rate limiting, and per-request timeouts.
//
// Chain order (outermost first): Recovery, Logging, RequestID, CORS,
// RateLimit, Timeout.
package middleware
