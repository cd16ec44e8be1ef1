// Package gateway assembles the HTTP surface of the proxy: routing,
// the middleware chain, and graceful lifecycle. Handlers live in the
// handlers subpackage, middleware in middleware, and the JSON error
// mapping in httperr.
package gateway
