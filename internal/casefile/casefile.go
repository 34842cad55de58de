// Package casefile manages the on-disk layout of a case: the per-case
// database, archived raw exports, mapper overrides, and export output.
package casefile

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prose66/InvestigationWorkbench/internal/database"
	"github.com/prose66/InvestigationWorkbench/internal/ingest"
	"github.com/prose66/InvestigationWorkbench/internal/model"
)

// Layout resolves the fixed paths inside a cases directory. All
// workbench state for one case lives under CaseDir(id).
type Layout struct {
	CasesRoot string
}

func (l Layout) CaseDir(caseID string) string {
	return filepath.Join(l.CasesRoot, caseID)
}

func (l Layout) DBPath(caseID string) string {
	return filepath.Join(l.CaseDir(caseID), "workbench.db")
}

func (l Layout) RawDir(caseID string) string {
	return filepath.Join(l.CaseDir(caseID), "raw")
}

func (l Layout) ExportsDir(caseID string) string {
	return filepath.Join(l.CaseDir(caseID), "exports")
}

func (l Layout) MapperDir(caseID string) string {
	return filepath.Join(l.CaseDir(caseID), "mappers")
}

func (l Layout) NotesPath(caseID string) string {
	return filepath.Join(l.CaseDir(caseID), "notes.md")
}

// OpenStore opens the case store for the configured driver. SQLite
// uses the per-case database file; Postgres ignores the layout and
// uses the connection string.
func (l Layout) OpenStore(caseID, driver, connStr string) (database.Store, error) {
	if driver == database.DriverPostgres {
		return database.OpenStore(driver, connStr)
	}
	return database.OpenStore(database.DriverSQLite, l.DBPath(caseID))
}

// InitCase creates the case directory skeleton, the notes file, the
// database schema, and the case row. Re-running on an existing case is
// harmless.
func InitCase(l Layout, caseID, title, driver, connStr string) error {
	for _, dir := range []string{
		l.CaseDir(caseID),
		l.RawDir(caseID),
		l.ExportsDir(caseID),
		l.MapperDir(caseID),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating case directory: %w", err)
		}
	}

	notes := l.NotesPath(caseID)
	if _, err := os.Stat(notes); errors.Is(err, os.ErrNotExist) {
		header := fmt.Sprintf("# Case %s\n\nCreated %s\n", caseID, time.Now().UTC().Format(time.RFC3339))
		if err := os.WriteFile(notes, []byte(header), 0o644); err != nil {
			return fmt.Errorf("writing notes file: %w", err)
		}
	}

	dsn := connStr
	if driver == database.DriverSQLite || driver == "" {
		driver = database.DriverSQLite
		dsn = l.DBPath(caseID)
	}
	db, err := database.CreateStore(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.CreateCase(caseID, title, time.Now().UTC().Format(time.RFC3339))
}

// RunMeta carries the operator-supplied metadata for add-run.
type RunMeta struct {
	SourceSystem string
	QueryName    string
	QueryText    string
	ExecutedAt   string
	TimeStart    string
	TimeEnd      string
}

// AddRun registers an export file against a case: hashes it, enforces
// the per-case duplicate-input guard, archives a copy under the raw
// directory, and inserts the pending run row. allowDuplicate bypasses
// the guard for deliberate re-registration.
func AddRun(l Layout, db database.Store, caseID, filePath string, meta RunMeta, allowDuplicate bool) (*model.QueryRun, error) {
	fileHash, err := sha256File(filePath)
	if err != nil {
		return nil, err
	}

	if !allowDuplicate {
		existing, err := db.FindRunByHash(caseID, fileHash)
		if err != nil && !errors.Is(err, database.ErrRunNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, &ingest.DuplicateInputError{
				RunID:     existing.RunID,
				QueryName: existing.QueryName,
			}
		}
	}

	runID := uuid.NewString()
	rawPath, err := archiveRaw(l, caseID, meta.SourceSystem, runID, filePath)
	if err != nil {
		return nil, err
	}

	run := &model.QueryRun{
		RunID:        runID,
		CaseID:       caseID,
		SourceSystem: strings.ToLower(meta.SourceSystem),
		QueryName:    meta.QueryName,
		QueryText:    meta.QueryText,
		ExecutedAt:   meta.ExecutedAt,
		TimeStart:    meta.TimeStart,
		TimeEnd:      meta.TimeEnd,
		RawPath:      rawPath,
		FileHash:     fileHash,
	}
	if err := db.CreateRun(run); err != nil {
		return nil, err
	}
	return run, nil
}

// archiveRaw copies the export file to raw/<source>/<run-id><ext> so
// ingestion never depends on the operator's original path surviving.
func archiveRaw(l Layout, caseID, source, runID, filePath string) (string, error) {
	dir := filepath.Join(l.RawDir(caseID), strings.ToLower(source))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating raw archive directory: %w", err)
	}

	dst := filepath.Join(dir, runID+filepath.Ext(filePath))
	src, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening export file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("creating archived copy: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", fmt.Errorf("archiving export file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("archiving export file: %w", err)
	}
	return dst, nil
}

// sha256File hashes a file's content for the duplicate-input guard.
func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
