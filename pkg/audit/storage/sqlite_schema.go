package storage

// SchemaVersion is the current audit schema version.
const SchemaVersion = 1

// Schema creates the audit tables and indexes.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id            TEXT PRIMARY KEY,
	request_id    TEXT NOT NULL,
	time          INTEGER NOT NULL,
	method        TEXT NOT NULL,
	resource_path TEXT NOT NULL,
	region        TEXT NOT NULL,
	status_code   INTEGER NOT NULL,
	outcome       TEXT NOT NULL,
	error_kind    TEXT NOT NULL DEFAULT '',
	attempts      INTEGER NOT NULL,
	duration_ns   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_time ON audit_records(time);
CREATE INDEX IF NOT EXISTS idx_audit_region ON audit_records(region);
CREATE INDEX IF NOT EXISTS idx_audit_outcome ON audit_records(outcome);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version, ignoring duplicates.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?);`

// GetSchemaVersion reads back the highest recorded schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version;`
