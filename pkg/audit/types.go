package audit

import (
	"context"
	"time"
)

// Record is the audit trail entry for a single proxied call. It carries
// call metadata only: credentials, request bodies, and response bodies
// are never recorded in any form.
type Record struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // From the gateway middleware

	// Time is when the call completed.
	Time time.Time `json:"time"`

	// Call shape
	Method       string `json:"method"`        // HTTP method sent upstream
	ResourcePath string `json:"resource_path"` // Vendor resource path
	Region       string `json:"region"`        // Resolved region ("US", "EUROPE", "APAC")

	// Outcome
	StatusCode int    `json:"status_code"`          // Upstream HTTP status, 0 if none
	Outcome    string `json:"outcome"`              // "success" or the error kind
	ErrorKind  string `json:"error_kind,omitempty"` // Taxonomy kind on failure

	// Attempts is the number of upstream call attempts, including
	// retries.
	Attempts int `json:"attempts"`

	// Duration is the total time spent including retries and backoff.
	Duration time.Duration `json:"duration"`
}

// Query defines filter parameters for querying audit records.
type Query struct {
	// Time range, both inclusive.
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`

	// Filters
	Region  string `json:"region,omitempty"`
	Outcome string `json:"outcome,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store defines the interface for audit storage backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Store persists an audit record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the filters, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the filters and returns how many
	// were removed. Used for retention enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases resources held by the backend.
	Close() error
}
