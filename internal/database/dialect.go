package database

// Dialect abstracts all database-specific SQL generation. Each backend
// (SQLite, PostgreSQL) implements this interface; the store itself is
// backend-agnostic.
type Dialect interface {
	// DriverName returns the database/sql driver name.
	DriverName() string

	// DSN returns the data source name for opening a connection.
	// For SQLite this is the file path; for PostgreSQL a connection
	// string.
	DSN(pathOrConnStr string) string

	// Placeholder returns the parameter placeholder for the given
	// 1-based index. SQLite: "?", PostgreSQL: "$1", "$2", ...
	Placeholder(index int) string

	// SchemaSQL returns the ordered DDL statements that create the
	// full case-store schema: cases, query_runs, events,
	// event_fields, the overflow staging table, and all indexes.
	SchemaSQL() []string

	// InsertEventSQL returns the duplicate-safe parameterized insert
	// for one event. Inserts colliding with an existing identity
	// (source event id or fingerprint) are silently ignored.
	InsertEventSQL() string

	// InsertStagedExtraSQL returns the insert for one staged
	// overflow field keyed by (case, run, raw_ref).
	InsertStagedExtraSQL() string

	// ResolveExtrasSQL returns the join-back statement that moves
	// staged overflow rows into event_fields using the surrogate
	// keys assigned at event insert time. Two placeholders: case id
	// and run id.
	ResolveExtrasSQL() string

	// EventArg converts an event field value to a bind argument.
	// Empty strings become SQL NULL; backends may sanitize further.
	EventArg(value string) any
}
