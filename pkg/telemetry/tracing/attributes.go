package tracing

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys used on Meridian spans.
const (
	AttrRegion       = "meridian.region"
	AttrResourcePath = "meridian.resource_path"
	AttrStatusCode   = "meridian.status_code"
	AttrAttempts     = "meridian.attempts"
	AttrErrorKind    = "meridian.error_kind"
	AttrEventKind    = "meridian.event_kind"
	AttrRequestID    = "meridian.request_id"
)

// Region returns the resolved upstream region attribute.
func Region(region string) attribute.KeyValue {
	return attribute.String(AttrRegion, region)
}

// ResourcePath returns the proxied resource path attribute.
func ResourcePath(path string) attribute.KeyValue {
	return attribute.String(AttrResourcePath, path)
}

// StatusCode returns the upstream HTTP status attribute.
func StatusCode(code int) attribute.KeyValue {
	return attribute.Int(AttrStatusCode, code)
}

// Attempts returns the attempt count attribute for retried calls.
func Attempts(n int) attribute.KeyValue {
	return attribute.Int(AttrAttempts, n)
}

// ErrorKind returns the error taxonomy kind attribute.
func ErrorKind(kind string) attribute.KeyValue {
	return attribute.String(AttrErrorKind, kind)
}

// EventKind returns the host platform event kind attribute.
func EventKind(kind string) attribute.KeyValue {
	return attribute.String(AttrEventKind, kind)
}

// RequestID returns the gateway request ID attribute.
func RequestID(id string) attribute.KeyValue {
	return attribute.String(AttrRequestID, id)
}
