package mapper

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TransformSpec is a per-unified-field transform in a declarative
// mapper config: an optional type coercion and an optional timestamp
// parse layout (Go reference-time format).
type TransformSpec struct {
	Type   string `yaml:"type"`
	Format string `yaml:"format"`
}

// ConfigMapper is a declarative mapper loaded from a YAML file, so a
// new source can be wired without writing code.
//
// Config format:
//
//	source: firewall
//	description: "Palo Alto firewall syslog exports"
//	field_map:
//	  receive_time: event_ts
//	  src: src_ip
//	  dst: dest_ip
//	defaults:
//	  event_type: "network_flow"
//	  source_system: "palo_alto"
//	required_only:
//	  - event_ts
//	  - event_type
//	transforms:
//	  event_ts:
//	    format: "2006/01/02 15:04:05"
//	  bytes_out:
//	    type: int
type ConfigMapper struct {
	hooks

	source      string
	description string
	fieldMap    []FieldMapping
	defaults    map[string]string
	required    []string
	transforms  map[string]TransformSpec
}

type configDoc struct {
	Source       string                   `yaml:"source"`
	Description  string                   `yaml:"description"`
	FieldMap     yaml.Node                `yaml:"field_map"`
	Defaults     map[string]string        `yaml:"defaults"`
	RequiredOnly []string                 `yaml:"required_only"`
	Transforms   map[string]TransformSpec `yaml:"transforms"`
}

// LoadConfigMapper reads and parses a declarative mapper config file.
func LoadConfigMapper(path string) (*ConfigMapper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapper config: %w", err)
	}
	m, err := ParseConfigMapper(data)
	if err != nil {
		return nil, err
	}
	if m.source == "" {
		m.source = strings.TrimSuffix(filepath.Base(path), ".yaml")
	}
	return m, nil
}

// ParseConfigMapper builds a ConfigMapper from raw YAML. The field_map
// is decoded through yaml.Node so declaration order is preserved; order
// decides which source field wins when several map to the same unified
// field.
func ParseConfigMapper(data []byte) (*ConfigMapper, error) {
	var doc configDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing mapper config: %w", err)
	}

	m := &ConfigMapper{
		source:      doc.Source,
		description: doc.Description,
		defaults:    doc.Defaults,
		required:    doc.RequiredOnly,
		transforms:  doc.Transforms,
	}

	if doc.FieldMap.Kind != 0 {
		if doc.FieldMap.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("parsing mapper config: field_map must be a mapping")
		}
		for i := 0; i+1 < len(doc.FieldMap.Content); i += 2 {
			m.fieldMap = append(m.fieldMap, FieldMapping{
				Source:  doc.FieldMap.Content[i].Value,
				Unified: doc.FieldMap.Content[i+1].Value,
			})
		}
	}

	return m, nil
}

func (m *ConfigMapper) Name() string             { return m.source }
func (m *ConfigMapper) Description() string      { return m.description }
func (m *ConfigMapper) FieldMap() []FieldMapping { return m.fieldMap }

// RequiredFields returns the config's required_only override, consulted
// by lenient validation. Nil means no override.
func (m *ConfigMapper) RequiredFields() []string { return m.required }

// Transform applies the config's type coercion and timestamp layout.
// Coercion failures leave the value untouched rather than failing the
// row.
func (m *ConfigMapper) Transform(unifiedField string, value any) any {
	spec, ok := m.transforms[unifiedField]
	if !ok || value == nil {
		return value
	}

	switch spec.Type {
	case "int":
		if n, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(value)), 10, 64); err == nil {
			return n
		}
		return value
	case "float":
		if f, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(value)), 64); err == nil {
			return f
		}
		return value
	case "bool":
		switch strings.ToLower(strings.TrimSpace(fmt.Sprint(value))) {
		case "true", "1", "yes":
			return true
		default:
			return false
		}
	case "string":
		value = fmt.Sprint(value)
	}

	if spec.Format != "" && unifiedField == "event_ts" {
		// "epoch" accepts Unix seconds; anything else is a Go
		// reference-time layout.
		if spec.Format == "epoch" {
			if iso, ok := epochToISO(value); ok {
				return iso
			}
		} else if ts, err := time.Parse(spec.Format, strings.TrimSpace(fmt.Sprint(value))); err == nil {
			return ts.UTC().Format(time.RFC3339)
		}
	}

	return value
}

// Postprocess stamps configured defaults onto missing fields.
func (m *ConfigMapper) Postprocess(row map[string]any) map[string]any {
	for field, value := range m.defaults {
		setDefault(row, field, value)
	}
	return row
}
