package database

import (
	"strings"

	"github.com/prose66/InvestigationWorkbench/internal/model"
)

// SQLiteDialect implements the Dialect interface for SQLite case
// stores.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string              { return "sqlite" }
func (d *SQLiteDialect) DSN(pathOrConnStr string) string { return pathOrConnStr }
func (d *SQLiteDialect) Placeholder(index int) string    { return "?" }

func (d *SQLiteDialect) EventArg(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func (d *SQLiteDialect) SchemaSQL() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS cases (
			case_id TEXT PRIMARY KEY,
			title TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS query_runs (
			run_id TEXT PRIMARY KEY,
			case_id TEXT NOT NULL,
			source_system TEXT NOT NULL,
			query_name TEXT NOT NULL,
			query_text TEXT,
			executed_at TEXT,
			time_start TEXT,
			time_end TEXT,
			raw_path TEXT NOT NULL,
			row_count INTEGER,
			file_hash TEXT NOT NULL,
			ingested_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS query_runs_case_idx ON query_runs (case_id)`,
		`CREATE INDEX IF NOT EXISTS query_runs_hash_idx ON query_runs (case_id, file_hash)`,
		`CREATE TABLE IF NOT EXISTS events (
			event_pk INTEGER PRIMARY KEY AUTOINCREMENT,
			` + eventColumnDDL() + `
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS events_source_id_uq
			ON events (case_id, source_event_id) WHERE source_event_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS events_fingerprint_uq
			ON events (case_id, fingerprint) WHERE fingerprint IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS events_run_idx ON events (case_id, run_id)`,
		`CREATE INDEX IF NOT EXISTS events_ts_idx ON events (case_id, event_ts)`,
		`CREATE INDEX IF NOT EXISTS events_raw_ref_idx ON events (case_id, run_id, raw_ref)`,
		`CREATE TABLE IF NOT EXISTS event_fields (
			event_pk INTEGER NOT NULL,
			case_id TEXT NOT NULL,
			field_name TEXT NOT NULL,
			field_value TEXT,
			UNIQUE (event_pk, field_name)
		)`,
		`CREATE TABLE IF NOT EXISTS event_fields_staging (
			case_id TEXT NOT NULL,
			run_id TEXT NOT NULL,
			raw_ref TEXT NOT NULL,
			field_name TEXT NOT NULL,
			field_value TEXT
		)`,
	}
}

func (d *SQLiteDialect) InsertEventSQL() string {
	return "INSERT OR IGNORE INTO events (" + eventColumnList() +
		") VALUES (" + placeholderList(d, len(model.EventColumns)) + ")"
}

func (d *SQLiteDialect) InsertStagedExtraSQL() string {
	return `INSERT INTO event_fields_staging (case_id, run_id, raw_ref, field_name, field_value)
		VALUES (?, ?, ?, ?, ?)`
}

func (d *SQLiteDialect) ResolveExtrasSQL() string {
	return `INSERT OR IGNORE INTO event_fields (event_pk, case_id, field_name, field_value)
		SELECT e.event_pk, s.case_id, s.field_name, s.field_value
		FROM event_fields_staging s
		JOIN events e
		  ON e.case_id = s.case_id
		 AND e.run_id = s.run_id
		 AND e.raw_ref = s.raw_ref
		WHERE s.case_id = ? AND s.run_id = ?`
}

// eventColumnDDL renders the shared TEXT column block of the events
// table; both dialects use the same column set in model.EventColumns
// order.
func eventColumnDDL() string {
	cols := make([]string, len(model.EventColumns))
	for i, c := range model.EventColumns {
		cols[i] = quoteIdent(c) + " TEXT"
	}
	return strings.Join(cols, ",\n\t\t\t")
}

// quoteIdent wraps column names that collide with SQL keywords.
// PostgreSQL reserves "user"; SQLite accepts the quoted form too.
func quoteIdent(name string) string {
	if name == "user" {
		return `"user"`
	}
	return name
}

// eventColumnList renders the quoted insert/select column list in
// model.EventColumns order.
func eventColumnList() string {
	cols := make([]string, len(model.EventColumns))
	for i, c := range model.EventColumns {
		cols[i] = quoteIdent(c)
	}
	return strings.Join(cols, ", ")
}

// placeholderList builds "?, ?, ..." or "$1, $2, ..." for n parameters.
func placeholderList(d Dialect, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = d.Placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}
