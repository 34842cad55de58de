package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/prose66/InvestigationWorkbench/internal/database"
	"github.com/prose66/InvestigationWorkbench/internal/mapper"
	"github.com/prose66/InvestigationWorkbench/internal/model"
)

// Flush thresholds for batched persistence. Events and overflow fields
// accumulate independently; either bound triggers a write.
const (
	eventBatchSize = 1000
	extraBatchSize = 2000
)

// Runner drives ingestion of registered runs for one case.
type Runner struct {
	Store    database.Store
	Resolver *mapper.Resolver
	Log      *zap.Logger

	// CaseDir is the case directory, used to find case-scoped mapper
	// overrides and to place error sidecars.
	CaseDir string

	// SkipErrors records bad rows and continues instead of aborting
	// the run on the first failure.
	SkipErrors bool

	// Lenient relaxes validation to the minimal required set (or the
	// mapper's declared override).
	Lenient bool
}

// IngestRun ingests one registered run end to end: resolves the
// mapper, streams rows from the archived file, translates and
// validates each, persists in batches, resolves overflow fields, and
// stamps the run ingested. The returned result is populated even when
// the run aborts partway.
func (r *Runner) IngestRun(caseID, runID string) (*IngestResult, error) {
	run, err := r.Store.GetRun(caseID, runID)
	if errors.Is(err, database.ErrRunNotFound) {
		return nil, &UnknownRunError{CaseID: caseID, RunID: runID}
	}
	if err != nil {
		return nil, err
	}

	m, tier := r.Resolver.Resolve(run.SourceSystem, r.CaseDir)
	result := &IngestResult{
		RunID:      runID,
		Source:     run.SourceSystem,
		MapperTier: tier,
	}

	r.Log.Info("ingesting run",
		zap.String("case_id", caseID),
		zap.String("run_id", runID),
		zap.String("source", run.SourceSystem),
		zap.String("mapper_tier", tier))

	reader, err := OpenRows(run.RawPath)
	if err != nil {
		return result, err
	}
	defer reader.Close()

	var (
		events    []*model.Event
		extras    []*model.ExtraField
		firstRow  = true
		rowErrors []RowError
	)

	flush := func() error {
		inserted, err := r.Store.InsertEvents(events)
		if err != nil {
			return err
		}
		result.EventsIngested += inserted
		if skipped := len(events) - inserted; skipped > 0 {
			r.Log.Info("duplicate events skipped",
				zap.String("run_id", runID),
				zap.Int("count", skipped))
		}
		events = events[:0]

		if err := r.Store.StageExtras(extras); err != nil {
			return err
		}
		extras = extras[:0]
		return nil
	}

	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var malformed *MalformedRecordError
			if errors.As(err, &malformed) {
				ref := strconv.Itoa(malformed.Line)
				if !r.handleRowError(result, &rowErrors, malformed.Line, ref, nil, err) {
					return result, err
				}
				continue
			}
			return result, err
		}

		if firstRow {
			result.recordCoverage(m, row.Fields)
			firstRow = false
		}

		rawRef := strconv.Itoa(row.Line)
		event, extraFields, err := PrepareEvent(caseID, runID, rawRef, row.Fields, m, r.Lenient)
		if err != nil {
			if !r.handleRowError(result, &rowErrors, row.Line, rawRef, row.Fields, err) {
				return result, err
			}
			continue
		}

		events = append(events, event)
		for name, value := range extraFields {
			extras = append(extras, &model.ExtraField{
				CaseID: caseID,
				RunID:  runID,
				RawRef: rawRef,
				Name:   name,
				Value:  value,
			})
		}

		if len(events) >= eventBatchSize || len(extras) >= extraBatchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}

	if err := flush(); err != nil {
		return result, err
	}
	if err := r.Store.ResolveExtras(caseID, runID); err != nil {
		return result, err
	}

	if len(rowErrors) > 0 {
		if path, err := writeErrorSidecar(run, rowErrors); err != nil {
			r.Log.Warn("writing error sidecar failed", zap.Error(err))
		} else {
			r.Log.Info("wrote error sidecar", zap.String("path", path))
		}
	}

	// row_count records events actually stored, not rows processed;
	// skipped and duplicate rows are visible in the report instead.
	ingestedAt := time.Now().UTC().Format(time.RFC3339)
	if err := r.Store.MarkRunIngested(caseID, runID, result.EventsIngested, ingestedAt); err != nil {
		return result, err
	}

	result.generateSuggestions(caseID)
	r.Log.Info("run ingested",
		zap.String("run_id", runID),
		zap.Int("events", result.EventsIngested),
		zap.Int("skipped", result.EventsSkipped))
	return result, nil
}

// IngestAll ingests every pending run for a case in registration
// order. A run-level failure stops the sweep; completed runs stay
// committed.
func (r *Runner) IngestAll(caseID string) ([]*IngestResult, error) {
	pending, err := r.Store.ListPendingRuns(caseID)
	if err != nil {
		return nil, err
	}

	var results []*IngestResult
	for _, run := range pending {
		result, err := r.IngestRun(caseID, run.RunID)
		if result != nil {
			results = append(results, result)
		}
		if err != nil {
			return results, fmt.Errorf("ingesting run %s: %w", run.RunID, err)
		}
	}
	return results, nil
}

// handleRowError records a skipped row when skip mode is on. Returns
// false when the run must abort instead.
func (r *Runner) handleRowError(result *IngestResult, rowErrors *[]RowError, line int, rawRef string, fields map[string]any, err error) bool {
	if !r.SkipErrors {
		return false
	}

	result.EventsSkipped++
	rowErr := RowError{
		Line:   line,
		Error:  err.Error(),
		RawRef: rawRef,
		Sample: sampleFields(fields),
	}
	result.Errors = append(result.Errors, rowErr)
	*rowErrors = append(*rowErrors, rowErr)

	r.Log.Warn("row skipped",
		zap.Int("line", line),
		zap.String("error", err.Error()))
	return true
}

// sampleFields captures a bounded snapshot of a bad row for the error
// report and sidecar.
func sampleFields(fields map[string]any) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	sample := make(map[string]string, maxSampleFields)
	for k, v := range fields {
		if len(sample) >= maxSampleFields {
			break
		}
		sample[k] = valueToString(v)
	}
	return sample
}

// writeErrorSidecar writes skipped-row details as NDJSON next to the
// archived raw file, named <run-id>_errors.ndjson.
func writeErrorSidecar(run *model.QueryRun, rowErrors []RowError) (string, error) {
	path := filepath.Join(filepath.Dir(run.RawPath), run.RunID+"_errors.ndjson")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating error sidecar: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, re := range rowErrors {
		if err := enc.Encode(re); err != nil {
			return "", fmt.Errorf("writing error sidecar: %w", err)
		}
	}
	return path, nil
}
