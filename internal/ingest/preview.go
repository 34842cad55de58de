package ingest

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prose66/InvestigationWorkbench/internal/mapper"
	"github.com/prose66/InvestigationWorkbench/internal/model"
)

// PreviewRow is one translated record shown before ingestion: the
// unified fields it would produce and the source fields that would
// overflow to extras.
type PreviewRow struct {
	Line    int               `json:"line"`
	Unified map[string]string `json:"unified"`
	Extras  map[string]string `json:"extras"`
	Error   string            `json:"error,omitempty"`
}

// PreviewResult reports how a file would translate without persisting
// anything.
type PreviewResult struct {
	Source         string            `json:"source"`
	MapperTier     string            `json:"mapper_tier"`
	Rows           []PreviewRow      `json:"rows"`
	FieldsMapped   map[string]string `json:"fields_mapped"`
	FieldsUnmapped []string          `json:"fields_unmapped"`
}

// Preview translates up to limit rows of an export file with the
// mapper that ingestion would resolve, reporting field coverage and
// per-row output. Nothing touches the database.
func Preview(path, source, caseDir string, r *mapper.Resolver, limit int) (*PreviewResult, error) {
	m, tier := r.Resolve(source, caseDir)
	result := &PreviewResult{Source: strings.ToLower(source), MapperTier: tier}

	reader, err := OpenRows(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	for len(result.Rows) < limit {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var malformed *MalformedRecordError
			if errors.As(err, &malformed) {
				result.Rows = append(result.Rows, PreviewRow{
					Line:  malformed.Line,
					Error: err.Error(),
				})
				continue
			}
			return nil, err
		}

		if result.FieldsMapped == nil {
			ir := &IngestResult{}
			ir.recordCoverage(m, row.Fields)
			result.FieldsMapped = ir.FieldsMapped
			result.FieldsUnmapped = ir.FieldsUnmapped
		}

		mapped := normalizeRow(mapper.MapRow(m, row.Fields))
		pr := PreviewRow{
			Line:    row.Line,
			Unified: make(map[string]string),
			Extras:  make(map[string]string),
		}
		for key, value := range mapped {
			if model.KnownFields[key] {
				pr.Unified[key] = value
			} else {
				pr.Extras[key] = value
			}
		}
		result.Rows = append(result.Rows, pr)
	}

	return result, nil
}

// FormatPreview renders a preview for CLI output.
func FormatPreview(p *PreviewResult) []string {
	lines := []string{
		fmt.Sprintf("Preview: %s (%s mapper)", p.Source, p.MapperTier),
		fmt.Sprintf("Mapped fields: %s", summarizeMapped(p.FieldsMapped, 20)),
	}
	if len(p.FieldsUnmapped) > 0 {
		lines = append(lines, fmt.Sprintf("Unmapped fields (-> extras): %s",
			summarizeList(p.FieldsUnmapped, 20)))
	}

	for _, row := range p.Rows {
		if row.Error != "" {
			lines = append(lines, fmt.Sprintf("  line %d: ERROR %s", row.Line, row.Error))
			continue
		}
		keys := make([]string, 0, len(row.Unified))
		for k := range row.Unified {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var parts []string
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, row.Unified[k]))
		}
		lines = append(lines, fmt.Sprintf("  line %d: %s", row.Line, strings.Join(parts, " ")))
		if len(row.Extras) > 0 {
			lines = append(lines, fmt.Sprintf("           extras: %d field(s)", len(row.Extras)))
		}
	}
	return lines
}
