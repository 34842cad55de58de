// Package mapper translates raw source records into the unified event
// schema. One Mapper exists per source family; declarative mappers are
// loaded from YAML, and a generic fallback covers unknown sources.
package mapper

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FieldMapping is one (source field -> unified field) pair. The mapping
// table is an ordered slice, not a map: when two source fields map to
// the same unified field, the later pair wins, and that order must be
// stable for translation to be deterministic.
type FieldMapping struct {
	Source  string
	Unified string
}

// Mapper is the translation rule set for one source system.
// Implementations are immutable once constructed.
type Mapper interface {
	// Name is the source label this mapper serves (e.g. "splunk").
	Name() string

	// FieldMap returns the ordered source->unified field table.
	FieldMap() []FieldMapping

	// Transform converts a raw value after mapping (type coercion,
	// timestamp reparsing). The default is identity.
	Transform(unifiedField string, value any) any

	// Preprocess runs before the main pass, typically to flatten
	// nested sub-objects into scratch pseudo-fields.
	Preprocess(row map[string]any) map[string]any

	// Postprocess runs after the main pass to apply defaults and
	// reconcile scratch fields into final unified fields.
	Postprocess(row map[string]any) map[string]any
}

// RequiredFielder is implemented by mappers that declare their own
// minimal required-field list (declarative configs). Lenient validation
// consults it; strict validation does not.
type RequiredFielder interface {
	RequiredFields() []string
}

// hooks provides no-op Transform/Preprocess/Postprocess defaults for
// embedding in concrete mappers.
type hooks struct{}

func (hooks) Transform(_ string, value any) any             { return value }
func (hooks) Preprocess(row map[string]any) map[string]any  { return row }
func (hooks) Postprocess(row map[string]any) map[string]any { return row }

// MapRow applies a mapper to one raw row. Source field names match
// case-insensitively. Fields already named like unified-schema columns
// pass through; mapped fields overwrite pass-through values.
func MapRow(m Mapper, row map[string]any) map[string]any {
	row = m.Preprocess(row)

	result := make(map[string]any, len(row))
	lowerKeys := make(map[string]string, len(row))
	for k, v := range row {
		result[k] = v
		lowerKeys[strings.ToLower(k)] = k
	}

	for _, fm := range m.FieldMap() {
		sourceKey, ok := lowerKeys[strings.ToLower(fm.Source)]
		if !ok || row[sourceKey] == nil {
			continue
		}
		if transformed := m.Transform(fm.Unified, row[sourceKey]); transformed != nil {
			result[fm.Unified] = transformed
		}
	}

	return m.Postprocess(result)
}

// setDefault assigns value only when the field is absent or nil.
func setDefault(row map[string]any, field string, value any) {
	if v, ok := row[field]; !ok || v == nil || v == "" {
		row[field] = value
	}
}

// promoteScratch moves a scratch pseudo-field into a final unified
// field when the target is still unset, then discards the scratch key.
func promoteScratch(row map[string]any, scratch, target string) {
	if v, ok := row[scratch]; ok {
		if cur, set := row[target]; !set || cur == nil || cur == "" {
			row[target] = v
		}
		delete(row, scratch)
	}
}

// asObject returns a nested sub-object, decoding a JSON string if the
// source serialized it (CSV exports of structured logs do this).
func asObject(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case string:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			return decoded, true
		}
	}
	return nil, false
}

// asArray returns a nested array, decoding a JSON string if needed.
func asArray(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case string:
		var decoded []any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			return decoded, true
		}
	}
	return nil, false
}

func stringField(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

// epochToISO converts a Unix-seconds value (number, or numeric string,
// possibly fractional) to an ISO-8601 UTC string. Returns false when the
// value is not an epoch.
func epochToISO(value any) (string, bool) {
	var secs float64
	switch v := value.(type) {
	case float64:
		secs = v
	case int:
		secs = float64(v)
	case int64:
		secs = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return "", false
		}
		secs = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return "", false
		}
		secs = f
	default:
		return "", false
	}

	sec := int64(secs)
	nsec := int64((secs - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC().Format(time.RFC3339), true
}
