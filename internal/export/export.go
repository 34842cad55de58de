// Package export writes the case timeline to analyst-consumable files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prose66/InvestigationWorkbench/internal/database"
	"github.com/prose66/InvestigationWorkbench/internal/model"
)

// Supported output formats.
const (
	FormatCSV    = "csv"
	FormatNDJSON = "ndjson"
)

// timelineColumns is the event column set plus the run metadata the
// join contributes.
var timelineColumns = append(append([]string{}, model.EventColumns...),
	"query_name", "executed_at", "time_start", "time_end")

// Timeline writes every event for a case, joined to its query run and
// ordered by event timestamp, into exportsDir. Returns the output path
// and the row count.
func Timeline(db database.Store, caseID, exportsDir, format string) (string, int, error) {
	rows, err := db.QueryTimeline(caseID)
	if err != nil {
		return "", 0, err
	}

	if err := os.MkdirAll(exportsDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("creating exports directory: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102T150405Z")
	switch format {
	case FormatCSV:
		path := filepath.Join(exportsDir, fmt.Sprintf("timeline_%s.csv", stamp))
		return path, len(rows), writeCSV(path, rows)
	case FormatNDJSON:
		path := filepath.Join(exportsDir, fmt.Sprintf("timeline_%s.ndjson", stamp))
		return path, len(rows), writeNDJSON(path, rows)
	default:
		return "", 0, fmt.Errorf("unsupported export format %q", format)
	}
}

func writeCSV(path string, rows []*database.TimelineRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(timelineColumns); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}

	for _, row := range rows {
		record := append(row.Event.ColumnValues(),
			row.QueryName, row.ExecutedAt, row.TimeStart, row.TimeEnd)
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing export row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing export file: %w", err)
	}
	return f.Close()
}

func writeNDJSON(path string, rows []*database.TimelineRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, row := range rows {
		record := make(map[string]string, len(timelineColumns))
		values := row.Event.ColumnValues()
		for i, col := range model.EventColumns {
			if values[i] != "" {
				record[col] = values[i]
			}
		}
		if row.QueryName != "" {
			record["query_name"] = row.QueryName
		}
		if row.ExecutedAt != "" {
			record["executed_at"] = row.ExecutedAt
		}
		if row.TimeStart != "" {
			record["time_start"] = row.TimeStart
		}
		if row.TimeEnd != "" {
			record["time_end"] = row.TimeEnd
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("writing export row: %w", err)
		}
	}
	return f.Close()
}
