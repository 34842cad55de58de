package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prose66/InvestigationWorkbench/internal/mapper"
	"github.com/prose66/InvestigationWorkbench/internal/model"
)

// RowError records one skipped row: its line number, the error text,
// the raw line reference, and a truncated sample of its fields.
type RowError struct {
	Line   int               `json:"line"`
	Error  string            `json:"error"`
	RawRef string            `json:"raw_ref"`
	Sample map[string]string `json:"sample"`
}

// maxSampleFields bounds the raw-field sample captured per error.
const maxSampleFields = 5

// IngestResult is the per-run ingestion report: counts, the mapper and
// tier used, field-coverage statistics, per-row errors, and remediation
// suggestions. It is a transient report, never persisted as an entity.
type IngestResult struct {
	RunID          string            `json:"run_id"`
	Source         string            `json:"source"`
	MapperTier     string            `json:"mapper_tier"`
	EventsIngested int               `json:"events_ingested"`
	EventsSkipped  int               `json:"events_skipped"`
	FieldsMapped   map[string]string `json:"fields_mapped"`
	FieldsUnmapped []string          `json:"fields_unmapped"`
	Errors         []RowError        `json:"errors"`
	Suggestions    []string          `json:"suggestions"`
}

// Success reports whether the run produced events or at least skipped
// nothing.
func (r *IngestResult) Success() bool {
	return r.EventsIngested > 0 || r.EventsSkipped == 0
}

// recordCoverage classifies the first row's source fields against the
// mapper's field table (case-insensitively) as mapped or overflow.
func (r *IngestResult) recordCoverage(m mapper.Mapper, row map[string]any) {
	sourceKeys := make(map[string]bool, len(row))
	for k := range row {
		sourceKeys[strings.ToLower(k)] = true
	}

	r.FieldsMapped = make(map[string]string)
	mappedSources := make(map[string]bool)
	for _, fm := range m.FieldMap() {
		mappedSources[strings.ToLower(fm.Source)] = true
		if sourceKeys[strings.ToLower(fm.Source)] {
			r.FieldsMapped[fm.Source] = fm.Unified
		}
	}

	for k := range row {
		lower := strings.ToLower(k)
		if !mappedSources[lower] && !model.KnownFields[lower] {
			r.FieldsUnmapped = append(r.FieldsUnmapped, k)
		}
	}
}

// generateSuggestions derives low-confidence remediation tips from the
// error pattern after a run completes.
func (r *IngestResult) generateSuggestions(caseID string) {
	if len(r.Errors) == 0 {
		return
	}

	firstError := r.Errors[0].Error
	if strings.Contains(firstError, "event_ts") || strings.Contains(firstError, "missing required fields") {
		r.Suggestions = append(r.Suggestions, fmt.Sprintf(
			"Create cases/%s/mappers/%s.yaml to map your timestamp field to event_ts",
			caseID, r.Source))
	}

	if len(r.FieldsUnmapped) > 5 {
		r.Suggestions = append(r.Suggestions, fmt.Sprintf(
			"Many unmapped fields (%d) went to extras. Consider creating a custom mapper for better field mapping.",
			len(r.FieldsUnmapped)))
	}

	if r.MapperTier == mapper.TierGeneric && r.EventsSkipped > 0 {
		r.Suggestions = append(r.Suggestions, fmt.Sprintf(
			"Using generic mapper. Create a YAML config for source %q to improve field mapping.",
			r.Source))
	}
}

// FormatReport renders the result for CLI output.
func FormatReport(r *IngestResult, verbose bool) []string {
	var lines []string
	lines = append(lines, fmt.Sprintf("\nIngesting %s (%s)", r.Source, r.MapperTier))

	if len(r.FieldsMapped) > 0 {
		lines = append(lines, "  [mapped] "+summarizeMapped(r.FieldsMapped, 8))
	}
	if len(r.FieldsUnmapped) > 0 {
		lines = append(lines, "  [unmapped -> extras] "+summarizeList(r.FieldsUnmapped, 10))
	}

	lines = append(lines, fmt.Sprintf("  Ingested: %d events", r.EventsIngested))

	if r.EventsSkipped > 0 {
		lines = append(lines, fmt.Sprintf("  Skipped: %d rows", r.EventsSkipped))
		if verbose && len(r.Errors) > 0 {
			first := r.Errors[0]
			lines = append(lines, fmt.Sprintf("    Line %d: %s", first.Line, first.Error))
		}
	}

	for _, tip := range r.Suggestions {
		lines = append(lines, "\n  Tip: "+tip)
	}
	return lines
}

func summarizeMapped(mapped map[string]string, limit int) string {
	pairs := make([]string, 0, len(mapped))
	for src, dst := range mapped {
		pairs = append(pairs, src+"->"+dst)
	}
	// Stable output for reports and tests.
	sort.Strings(pairs)
	return summarizeList(pairs, limit)
}

func summarizeList(items []string, limit int) string {
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:limit], ", ") + fmt.Sprintf(" (+%d more)", len(items)-limit)
}
