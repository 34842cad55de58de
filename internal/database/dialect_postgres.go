package database

import (
	"fmt"
	"strings"

	"github.com/prose66/InvestigationWorkbench/internal/model"
)

// PostgresDialect implements the Dialect interface for PostgreSQL case
// stores. One Postgres database can host many cases; every table is
// keyed by case_id.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string              { return "pgx" }
func (d *PostgresDialect) DSN(pathOrConnStr string) string { return pathOrConnStr }

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// EventArg maps empty strings to NULL and strips null bytes, which
// PostgreSQL rejects as invalid UTF-8 even though the source file may
// contain them.
func (d *PostgresDialect) EventArg(value string) any {
	if value == "" {
		return nil
	}
	if strings.ContainsRune(value, '\x00') {
		return strings.ReplaceAll(value, "\x00", "")
	}
	return value
}

func (d *PostgresDialect) SchemaSQL() []string {
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
			row_count BIGINT,
			file_hash TEXT NOT NULL,
			ingested_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS query_runs_case_idx ON query_runs (case_id)`,
		`CREATE INDEX IF NOT EXISTS query_runs_hash_idx ON query_runs (case_id, file_hash)`,
		`CREATE TABLE IF NOT EXISTS events (
			event_pk BIGSERIAL PRIMARY KEY,
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
			event_pk BIGINT NOT NULL,
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

func (d *PostgresDialect) InsertEventSQL() string {
	return "INSERT INTO events (" + eventColumnList() +
		") VALUES (" + placeholderList(d, len(model.EventColumns)) +
		") ON CONFLICT DO NOTHING"
}

func (d *PostgresDialect) InsertStagedExtraSQL() string {
	return `INSERT INTO event_fields_staging (case_id, run_id, raw_ref, field_name, field_value)
		VALUES ($1, $2, $3, $4, $5)`
}

func (d *PostgresDialect) ResolveExtrasSQL() string {
	return `INSERT INTO event_fields (event_pk, case_id, field_name, field_value)
		SELECT e.event_pk, s.case_id, s.field_name, s.field_value
		FROM event_fields_staging s
		JOIN events e
		  ON e.case_id = s.case_id
		 AND e.run_id = s.run_id
		 AND e.raw_ref = s.raw_ref
		WHERE s.case_id = $1 AND s.run_id = $2
		ON CONFLICT DO NOTHING`
}
