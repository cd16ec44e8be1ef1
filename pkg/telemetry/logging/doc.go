// Package logging provides structured logging with credential redaction.
//
// The package wraps Go's standard log/slog to provide JSON and text
// output, configurable levels, context-aware fields (request ID,
// session, region), and automatic redaction of bearer credentials.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Redact: true,
//	})
//
//	logger.Info("request forwarded",
//	    "request_id", "req-123",
//	    "region", "EUROPE",
//	    "status", 200,
//	)
//
//	// Context-aware logging
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "processing")  // includes request_id
//
// # Redaction
//
// When Redact is enabled, bearer credentials are removed from string
// values ("Bearer eyJh..." becomes "Bearer ***") and any value logged
// under a sensitive key name (token, authorization, secret, password)
// is replaced with "***" entirely. The gateway handles credentials it
// does not own, so no fragment of one may survive into log output.
package logging
