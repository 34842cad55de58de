// Package ingest turns registered export files into normalized events:
// streaming row iteration, field translation, validation, deduplication
// fingerprinting, and batched persistence with partial-failure handling.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prose66/InvestigationWorkbench/internal/mapper"
	"github.com/prose66/InvestigationWorkbench/internal/model"
)

// fingerprintFields is the fixed, ordered input to the dedup hash.
// Changing this order invalidates every previously computed
// fingerprint; do not reorder.
var fingerprintFields = []string{
	"event_ts", "source_system", "event_type", "host", "user",
	"src_ip", "dest_ip", "process_name", "process_cmdline",
	"file_hash", "outcome", "severity", "message",
}

// timestampLayouts are tried in order when normalizing event_ts.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// NormalizeTimestamp converts a source timestamp string to ISO-8601
// UTC with a Z suffix. Naive timestamps are assumed to be UTC already.
func NormalizeTimestamp(value string) (string, error) {
	text := strings.TrimSpace(value)
	if text == "" {
		return "", fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		return ts.UTC().Format(time.RFC3339), nil
	}
	return "", fmt.Errorf("unparseable timestamp %q", value)
}

// valueToString flattens a translated value for storage. Nested
// structures are kept as compact JSON so nothing is lost.
func valueToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}

// normalizeRow flattens and trims every translated value, dropping
// fields that end up empty.
func normalizeRow(row map[string]any) map[string]string {
	normalized := make(map[string]string, len(row))
	for key, value := range row {
		text := strings.TrimSpace(valueToString(value))
		if text != "" {
			normalized[key] = text
		}
	}
	return normalized
}

// requiredFor picks the required-field list: the full strict set, or in
// lenient mode the mapper's declared override (falling back to the
// minimal timestamp + event-type pair).
func requiredFor(m mapper.Mapper, lenient bool) []string {
	if !lenient {
		return model.RequiredFields
	}
	if rf, ok := m.(mapper.RequiredFielder); ok {
		if fields := rf.RequiredFields(); len(fields) > 0 {
			return fields
		}
	}
	return model.MinimalRequiredFields
}

// validate checks the required-field contract. In strict mode the
// resolved source-system label (source_system or source) is required as
// well. All missing fields are reported in one error.
func validate(row map[string]string, required []string, strict bool) error {
	var missing []string
	for _, field := range required {
		if row[field] == "" {
			missing = append(missing, field)
		}
	}
	if strict && row["source_system"] == "" && row["source"] == "" {
		missing = append(missing, "source_system")
	}
	if len(missing) > 0 {
		return &MissingRequiredFieldsError{Fields: missing}
	}
	return nil
}

// Fingerprint derives the content identity hash for a normalized row:
// SHA-256 over a pipe-joined, fixed-order field subset, absent fields
// contributing empty strings. Overflow fields are deliberately ignored,
// so rows differing only in extras count as duplicates.
func Fingerprint(row map[string]string) string {
	parts := make([]string, 0, len(fingerprintFields))
	for _, field := range fingerprintFields {
		value := row[field]
		if field == "source_system" && value == "" {
			value = row["source"]
		}
		parts = append(parts, value)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// compactJSON serializes extras with sorted keys so identical content
// always produces identical bytes.
func compactJSON(extras map[string]string) string {
	keys := make([]string, 0, len(extras))
	for k := range extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(extras[k])
		b.Write(keyJSON)
		b.WriteByte(':')
		b.Write(valJSON)
	}
	b.WriteByte('}')
	return b.String()
}

// PrepareEvent translates one raw row through the mapper and builds the
// normalized event plus its overflow fields. The returned extras map
// holds every translated field outside the unified schema. raw_json is
// stored only when the source record supplies it; it is never derived.
func PrepareEvent(caseID, runID, rawRef string, row map[string]any, m mapper.Mapper, lenient bool) (*model.Event, map[string]string, error) {
	mapped := mapper.MapRow(m, row)
	normalized := normalizeRow(mapped)

	if err := validate(normalized, requiredFor(m, lenient), !lenient); err != nil {
		return nil, nil, err
	}

	eventTS, err := NormalizeTimestamp(normalized["event_ts"])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid event_ts: %w", err)
	}
	normalized["event_ts"] = eventTS

	extras := make(map[string]string)
	for key, value := range normalized {
		if !model.KnownFields[key] {
			extras[key] = value
		}
	}

	event := &model.Event{
		CaseID: caseID,
		RunID:  runID,
		RawRef: rawRef,
	}
	for key, value := range normalized {
		event.SetField(key, value)
	}

	if event.SourceSystem == "" {
		event.SourceSystem = normalized["source"]
	}
	if len(extras) > 0 {
		event.ExtrasJSON = compactJSON(extras)
	}

	// A native source event id carries identity by itself; only
	// derive a fingerprint when the source provides none.
	if event.SourceEventID == "" {
		event.Fingerprint = Fingerprint(normalized)
	}

	return event, extras, nil
}
