package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/prose66/InvestigationWorkbench/internal/model"

	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run id does not exist for a case.
var ErrRunNotFound = errors.New("run not found")

// SQLStore manages all case-store operations over database/sql. All
// SQL generation that differs between backends goes through the
// Dialect; everything else is shared.
type SQLStore struct {
	path    string
	conn    *sql.DB
	dialect Dialect
}

// openConn opens and verifies a connection for the given dialect.
func openConn(d Dialect, pathOrConnStr string) (*sql.DB, error) {
	conn, err := sql.Open(d.DriverName(), d.DSN(pathOrConnStr))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return conn, nil
}

// OpenSQLite opens an existing SQLite case store.
func OpenSQLite(path string) (*SQLStore, error) {
	d := &SQLiteDialect{}

	conn, err := openConn(d, path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return &SQLStore{path: path, conn: conn, dialect: d}, nil
}

// CreateSQLite creates a new SQLite case store with the full schema.
// Opening an existing file is fine; the schema statements are
// idempotent.
func CreateSQLite(path string) (*SQLStore, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}

	if err := db.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *SQLStore) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the file path or connection string of the store.
func (db *SQLStore) Path() string { return db.path }

// Conn returns the underlying *sql.DB for advanced usage.
func (db *SQLStore) Conn() *sql.DB { return db.conn }

// createSchema builds all tables and indexes.
func (db *SQLStore) createSchema() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range db.dialect.SchemaSQL() {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return tx.Commit()
}

// CreateCase registers a case row; re-running init on an existing case
// is a no-op.
func (db *SQLStore) CreateCase(caseID, title, createdAt string) error {
	var query string
	if db.dialect.DriverName() == "pgx" {
		query = "INSERT INTO cases (case_id, title, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING"
	} else {
		query = "INSERT OR IGNORE INTO cases (case_id, title, created_at) VALUES (?, ?, ?)"
	}
	_, err := db.conn.Exec(query, caseID, db.dialect.EventArg(title), createdAt)
	return err
}

const runColumns = `run_id, case_id, source_system, query_name, query_text,
	executed_at, time_start, time_end, raw_path, row_count, file_hash, ingested_at`

// CreateRun inserts a registered query run with ingested_at NULL.
func (db *SQLStore) CreateRun(run *model.QueryRun) error {
	query := "INSERT INTO query_runs (" + runColumns + ") VALUES (" +
		placeholderList(db.dialect, 12) + ")"

	_, err := db.conn.Exec(query,
		run.RunID, run.CaseID, run.SourceSystem, run.QueryName,
		db.dialect.EventArg(run.QueryText),
		db.dialect.EventArg(run.ExecutedAt),
		db.dialect.EventArg(run.TimeStart),
		db.dialect.EventArg(run.TimeEnd),
		run.RawPath, nil, run.FileHash, nil,
	)
	if err != nil {
		return fmt.Errorf("inserting query run: %w", err)
	}
	return nil
}

// GetRun fetches one run by id, returning ErrRunNotFound when absent.
func (db *SQLStore) GetRun(caseID, runID string) (*model.QueryRun, error) {
	query := "SELECT " + runColumns + " FROM query_runs WHERE case_id = " +
		db.dialect.Placeholder(1) + " AND run_id = " + db.dialect.Placeholder(2)
	return db.scanRun(db.conn.QueryRow(query, caseID, runID))
}

// FindRunByHash looks up a run by archived-file content hash, used by
// the duplicate-input guard. Returns ErrRunNotFound when no run matches.
func (db *SQLStore) FindRunByHash(caseID, fileHash string) (*model.QueryRun, error) {
	query := "SELECT " + runColumns + " FROM query_runs WHERE case_id = " +
		db.dialect.Placeholder(1) + " AND file_hash = " + db.dialect.Placeholder(2)
	return db.scanRun(db.conn.QueryRow(query, caseID, fileHash))
}

// ListPendingRuns returns every run whose ingestion has not completed.
func (db *SQLStore) ListPendingRuns(caseID string) ([]*model.QueryRun, error) {
	query := "SELECT " + runColumns + " FROM query_runs WHERE case_id = " +
		db.dialect.Placeholder(1) + " AND ingested_at IS NULL"

	rows, err := db.conn.Query(query, caseID)
	if err != nil {
		return nil, fmt.Errorf("querying pending runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.QueryRun
	for rows.Next() {
		run, err := db.scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// MarkRunIngested stamps a run's final row count and ingestion time.
func (db *SQLStore) MarkRunIngested(caseID, runID string, rowCount int, ingestedAt string) error {
	query := "UPDATE query_runs SET row_count = " + db.dialect.Placeholder(1) +
		", ingested_at = " + db.dialect.Placeholder(2) +
		" WHERE case_id = " + db.dialect.Placeholder(3) +
		" AND run_id = " + db.dialect.Placeholder(4)
	_, err := db.conn.Exec(query, rowCount, ingestedAt, caseID, runID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *SQLStore) scanRun(row rowScanner) (*model.QueryRun, error) {
	run := &model.QueryRun{}
	var queryText, executedAt, timeStart, timeEnd, ingestedAt sql.NullString
	var rowCount sql.NullInt64

	err := row.Scan(
		&run.RunID, &run.CaseID, &run.SourceSystem, &run.QueryName,
		&queryText, &executedAt, &timeStart, &timeEnd,
		&run.RawPath, &rowCount, &run.FileHash, &ingestedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning query run: %w", err)
	}

	run.QueryText = queryText.String
	run.ExecutedAt = executedAt.String
	run.TimeStart = timeStart.String
	run.TimeEnd = timeEnd.String
	run.IngestedAt = ingestedAt.String
	run.RowCount = rowCount.Int64
	return run, nil
}

// InsertEvents inserts a batch of events inside a single transaction
// using a prepared duplicate-safe statement. Returns the number of
// rows actually inserted; identity collisions are silently skipped.
func (db *SQLStore) InsertEvents(events []*model.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(db.dialect.InsertEventSQL())
	if err != nil {
		return 0, fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i, e := range events {
		values := e.ColumnValues()
		args := make([]any, len(values))
		for j, v := range values {
			args[j] = db.dialect.EventArg(v)
		}

		res, err := stmt.Exec(args...)
		if err != nil {
			return inserted, fmt.Errorf("inserting event %d: %w", i+1, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("committing transaction: %w", err)
	}
	return inserted, nil
}

// StageExtras writes overflow fields to the staging table keyed by
// (case, run, raw_ref). The surrogate event keys do not exist yet.
func (db *SQLStore) StageExtras(fields []*model.ExtraField) error {
	if len(fields) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(db.dialect.InsertStagedExtraSQL())
	if err != nil {
		return fmt.Errorf("preparing staging insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range fields {
		if _, err := stmt.Exec(f.CaseID, f.RunID, f.RawRef, f.Name, db.dialect.EventArg(f.Value)); err != nil {
			return fmt.Errorf("staging extra field: %w", err)
		}
	}
	return tx.Commit()
}

// ResolveExtras joins staged overflow rows back to the just-inserted
// events by (case, run, raw_ref) and clears the staging area.
func (db *SQLStore) ResolveExtras(caseID, runID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(db.dialect.ResolveExtrasSQL(), caseID, runID); err != nil {
		return fmt.Errorf("resolving staged extras: %w", err)
	}

	purge := "DELETE FROM event_fields_staging WHERE case_id = " +
		db.dialect.Placeholder(1) + " AND run_id = " + db.dialect.Placeholder(2)
	if _, err := tx.Exec(purge, caseID, runID); err != nil {
		return fmt.Errorf("clearing staging table: %w", err)
	}
	return tx.Commit()
}

// CountEvents returns the number of events stored for a case.
func (db *SQLStore) CountEvents(caseID string) (int64, error) {
	query := "SELECT COUNT(event_pk) FROM events WHERE case_id = " + db.dialect.Placeholder(1)
	var count int64
	err := db.conn.QueryRow(query, caseID).Scan(&count)
	return count, err
}

// ListExtras returns all resolved overflow fields for a case.
func (db *SQLStore) ListExtras(caseID string) ([]*model.ExtraField, error) {
	query := "SELECT event_pk, case_id, field_name, field_value FROM event_fields WHERE case_id = " +
		db.dialect.Placeholder(1) + " ORDER BY event_pk, field_name"

	rows, err := db.conn.Query(query, caseID)
	if err != nil {
		return nil, fmt.Errorf("querying extra fields: %w", err)
	}
	defer rows.Close()

	var extras []*model.ExtraField
	for rows.Next() {
		f := &model.ExtraField{}
		var value sql.NullString
		if err := rows.Scan(&f.EventPK, &f.CaseID, &f.Name, &value); err != nil {
			return nil, fmt.Errorf("scanning extra field: %w", err)
		}
		f.Value = value.String
		extras = append(extras, f)
	}
	return extras, rows.Err()
}

// QueryTimeline returns every event for a case joined to its run
// metadata, ordered by event timestamp.
func (db *SQLStore) QueryTimeline(caseID string) ([]*TimelineRow, error) {
	eventCols := make([]string, len(model.EventColumns))
	for i, c := range model.EventColumns {
		eventCols[i] = "e." + quoteIdent(c)
	}

	query := "SELECT e.event_pk, " + joinColumns(eventCols) +
		", q.query_name, q.executed_at, q.time_start, q.time_end" +
		" FROM events e JOIN query_runs q ON e.run_id = q.run_id" +
		" WHERE e.case_id = " + db.dialect.Placeholder(1) +
		" ORDER BY e.event_ts ASC"

	rows, err := db.conn.Query(query, caseID)
	if err != nil {
		return nil, fmt.Errorf("querying timeline: %w", err)
	}
	defer rows.Close()

	var timeline []*TimelineRow
	for rows.Next() {
		row, err := scanTimelineRow(rows)
		if err != nil {
			return nil, err
		}
		timeline = append(timeline, row)
	}
	return timeline, rows.Err()
}

func scanTimelineRow(rows *sql.Rows) (*TimelineRow, error) {
	e := &model.Event{}
	cols := make([]sql.NullString, len(model.EventColumns))

	dest := make([]any, 0, len(cols)+5)
	dest = append(dest, &e.PK)
	for i := range cols {
		dest = append(dest, &cols[i])
	}

	var queryName, executedAt, timeStart, timeEnd sql.NullString
	dest = append(dest, &queryName, &executedAt, &timeStart, &timeEnd)

	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scanning timeline row: %w", err)
	}

	for i, name := range model.EventColumns {
		switch name {
		case "case_id":
			e.CaseID = cols[i].String
		case "run_id":
			e.RunID = cols[i].String
		case "raw_ref":
			e.RawRef = cols[i].String
		case "fingerprint":
			e.Fingerprint = cols[i].String
		default:
			e.SetField(name, cols[i].String)
		}
	}

	return &TimelineRow{
		Event:      e,
		QueryName:  queryName.String,
		ExecutedAt: executedAt.String,
		TimeStart:  timeStart.String,
		TimeEnd:    timeEnd.String,
	}, nil
}

func joinColumns(cols []string) string {
	out := cols[0]
	for _, c := range cols[1:] {
		out += ", " + c
	}
	return out
}
