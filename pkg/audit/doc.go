// Package audit captures an audit trail of proxied upstream calls.
//
// Each proxied call produces one Record holding call metadata: method,
// resource path, resolved region, status, outcome, attempt count, and
// duration. Credentials and bodies are deliberately absent from the
// record type, so they cannot leak into storage.
//
// Records flow through an async Recorder into a Store backend (SQLite
// or in-memory), and the retention subpackage prunes old records on a
// cron schedule.
//
//	store, _ := storage.NewSQLiteStore(&storage.SQLiteConfig{Path: cfg.Audit.SQLitePath})
//	recorder := audit.NewRecorder(store, &audit.RecorderConfig{
//	    Enabled: cfg.Audit.Enabled,
//	    Buffer:  cfg.Audit.Buffer,
//	})
//	defer recorder.Close()
//
//	recorder.Record(ctx, &audit.Record{
//	    RequestID:    reqID,
//	    Method:       "GET",
//	    ResourcePath: "/projects/p1/files",
//	    Region:       "EUROPE",
//	    StatusCode:   200,
//	    Outcome:      "success",
//	    Attempts:     1,
//	    Duration:     elapsed,
//	})
package audit
