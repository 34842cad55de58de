package mapper

import (
	"os"
	"path/filepath"
	"testing"
)

const firewallConfig = `source: firewall
description: "test firewall config"
field_map:
  receive_time: event_ts
  src: src_ip
  dst: dest_ip
  sent_bytes: bytes_out
defaults:
  event_type: "network_flow"
  source_system: "palo_alto"
required_only:
  - event_ts
  - event_type
transforms:
  event_ts:
    format: "2006/01/02 15:04:05"
  bytes_out:
    type: int
`

func TestParseConfigMapper(t *testing.T) {
	m, err := ParseConfigMapper([]byte(firewallConfig))
	if err != nil {
		t.Fatalf("ParseConfigMapper failed: %v", err)
	}

	if m.Name() != "firewall" {
		t.Errorf("Name = %q, want firewall", m.Name())
	}
	if got := len(m.FieldMap()); got != 4 {
		t.Fatalf("field map has %d pairs, want 4", got)
	}
	// Declaration order must survive parsing.
	if m.FieldMap()[0].Source != "receive_time" || m.FieldMap()[3].Source != "sent_bytes" {
		t.Errorf("field map order not preserved: %v", m.FieldMap())
	}
	if got := m.RequiredFields(); len(got) != 2 || got[0] != "event_ts" {
		t.Errorf("RequiredFields = %v", got)
	}
}

func TestConfigMapperMapRow(t *testing.T) {
	m, err := ParseConfigMapper([]byte(firewallConfig))
	if err != nil {
		t.Fatalf("ParseConfigMapper failed: %v", err)
	}

	row := map[string]any{
		"receive_time": "2024/07/01 12:00:00",
		"src":          "192.0.2.1",
		"dst":          "192.0.2.2",
		"sent_bytes":   "4096",
	}
	mapped := MapRow(m, row)

	if got := mapped["event_ts"]; got != "2024-07-01T12:00:00Z" {
		t.Errorf("event_ts = %v, want 2024-07-01T12:00:00Z", got)
	}
	if got := mapped["src_ip"]; got != "192.0.2.1" {
		t.Errorf("src_ip = %v", got)
	}
	if got := mapped["bytes_out"]; got != int64(4096) {
		t.Errorf("bytes_out = %v (%T), want int64 4096", got, got)
	}
	if got := mapped["event_type"]; got != "network_flow" {
		t.Errorf("default event_type = %v", got)
	}
	if got := mapped["source_system"]; got != "palo_alto" {
		t.Errorf("default source_system = %v", got)
	}
}

func TestConfigMapperEpochFormat(t *testing.T) {
	m, err := ParseConfigMapper([]byte(
		"source: zeekish\nfield_map:\n  ts: event_ts\ntransforms:\n  event_ts:\n    format: \"epoch\"\n"))
	if err != nil {
		t.Fatalf("ParseConfigMapper failed: %v", err)
	}

	mapped := MapRow(m, map[string]any{"ts": 1719835200.5})
	if got := mapped["event_ts"]; got != "2024-07-01T12:00:00Z" {
		t.Errorf("event_ts = %v, want 2024-07-01T12:00:00Z", got)
	}
}

func TestConfigMapperCoercionFailureKeepsValue(t *testing.T) {
	m, err := ParseConfigMapper([]byte(
		"source: s\nfield_map:\n  b: bytes_out\ntransforms:\n  bytes_out:\n    type: int\n"))
	if err != nil {
		t.Fatalf("ParseConfigMapper failed: %v", err)
	}

	mapped := MapRow(m, map[string]any{"b": "not-a-number"})
	if got := mapped["bytes_out"]; got != "not-a-number" {
		t.Errorf("bytes_out = %v, want original string", got)
	}
}

func TestLoadConfigMapperNameFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "customsrc.yaml")
	if err := os.WriteFile(path, []byte("field_map:\n  t: event_ts\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadConfigMapper(path)
	if err != nil {
		t.Fatalf("LoadConfigMapper failed: %v", err)
	}
	if m.Name() != "customsrc" {
		t.Errorf("Name = %q, want customsrc", m.Name())
	}
}

func TestParseConfigMapperRejectsNonMappingFieldMap(t *testing.T) {
	if _, err := ParseConfigMapper([]byte("field_map:\n  - a\n  - b\n")); err == nil {
		t.Fatal("expected error for sequence field_map")
	}
}
