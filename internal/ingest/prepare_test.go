package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/prose66/InvestigationWorkbench/internal/mapper"
)

func strictRow() map[string]any {
	return map[string]any{
		"_time":       float64(1719835200),
		"sourcetype":  "wineventlog",
		"host":        "dc01",
		"user":        "alice",
		"src":         "10.0.0.1",
		"dest":        "10.0.0.2",
		"process":     "powershell.exe",
		"CommandLine": "powershell -enc ...",
		"file_hash":   "abc123",
		"action":      "success",
		"severity":    "high",
		"_raw":        "full raw event",
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-07-01T12:00:00Z", "2024-07-01T12:00:00Z", true},
		{"2024-07-01T12:00:00+02:00", "2024-07-01T10:00:00Z", true},
		{"2024-07-01T12:00:00.123456789Z", "2024-07-01T12:00:00Z", true},
		{"2024-07-01 12:00:00", "2024-07-01T12:00:00Z", true},
		{"2024-07-01", "2024-07-01T00:00:00Z", true},
		{"not a date", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, err := NormalizeTimestamp(tt.in)
		if tt.ok && err != nil {
			t.Errorf("NormalizeTimestamp(%q) failed: %v", tt.in, err)
			continue
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("NormalizeTimestamp(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeTimestamp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrepareEventStrict(t *testing.T) {
	event, extras, err := PrepareEvent("case1", "run1", "1", strictRow(), mapper.SplunkMapper{}, false)
	if err != nil {
		t.Fatalf("PrepareEvent failed: %v", err)
	}

	if event.EventTS != "2024-07-01T12:00:00Z" {
		t.Errorf("EventTS = %q", event.EventTS)
	}
	if event.SourceSystem != "splunk" {
		t.Errorf("SourceSystem = %q, want splunk", event.SourceSystem)
	}
	if event.CaseID != "case1" || event.RunID != "run1" || event.RawRef != "1" {
		t.Errorf("bookkeeping fields wrong: %q %q %q", event.CaseID, event.RunID, event.RawRef)
	}
	if event.RawJSON != "" {
		t.Errorf("RawJSON derived without a supplied raw_json field: %q", event.RawJSON)
	}
	if len(extras) == 0 {
		t.Error("expected pass-through source fields in extras")
	}
}

func TestPrepareEventSuppliedRawJSON(t *testing.T) {
	row := strictRow()
	row["raw_json"] = `{"original":"record"}`

	event, extras, err := PrepareEvent("case1", "run1", "1", row, mapper.SplunkMapper{}, false)
	if err != nil {
		t.Fatalf("PrepareEvent failed: %v", err)
	}
	if event.RawJSON != `{"original":"record"}` {
		t.Errorf("RawJSON = %q, want the supplied value", event.RawJSON)
	}
	if _, ok := extras["raw_json"]; ok {
		t.Error("supplied raw_json leaked into extras")
	}
}

func TestPrepareEventStrictMissingFields(t *testing.T) {
	row := map[string]any{"_time": float64(1719835200)}

	_, _, err := PrepareEvent("case1", "run1", "1", row, mapper.SplunkMapper{}, false)
	var missing *MissingRequiredFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingRequiredFieldsError", err)
	}
	if len(missing.Fields) == 0 {
		t.Error("no missing fields reported")
	}
}

func TestPrepareEventLenient(t *testing.T) {
	// Only timestamp and event type; fails strict, passes lenient.
	row := map[string]any{
		"_time":      float64(1719835200),
		"sourcetype": "syslog",
	}

	if _, _, err := PrepareEvent("c", "r", "1", row, mapper.SplunkMapper{}, false); err == nil {
		t.Fatal("strict validation should reject the sparse row")
	}

	event, _, err := PrepareEvent("c", "r", "1", row, mapper.SplunkMapper{}, true)
	if err != nil {
		t.Fatalf("lenient PrepareEvent failed: %v", err)
	}
	if event.EventType != "syslog" {
		t.Errorf("EventType = %q", event.EventType)
	}
}

func TestPrepareEventBadTimestamp(t *testing.T) {
	row := strictRow()
	row["_time"] = "yesterday-ish"

	_, _, err := PrepareEvent("c", "r", "1", row, mapper.SplunkMapper{}, false)
	if err == nil || !strings.Contains(err.Error(), "event_ts") {
		t.Fatalf("err = %v, want invalid event_ts", err)
	}
}

func TestPrepareEventLossless(t *testing.T) {
	row := strictRow()
	row["vendor_specific_code"] = "XJ-9"
	row["another_custom"] = map[string]any{"nested": true}

	event, extras, err := PrepareEvent("c", "r", "1", row, mapper.SplunkMapper{}, false)
	if err != nil {
		t.Fatalf("PrepareEvent failed: %v", err)
	}

	if extras["vendor_specific_code"] != "XJ-9" {
		t.Errorf("extras missing vendor field: %v", extras)
	}
	if !strings.Contains(extras["another_custom"], "nested") {
		t.Errorf("nested extra not preserved as JSON: %q", extras["another_custom"])
	}
	if !strings.Contains(event.ExtrasJSON, "vendor_specific_code") {
		t.Errorf("ExtrasJSON missing overflow field: %q", event.ExtrasJSON)
	}
}

func TestSplunkLoginDeniedExample(t *testing.T) {
	row := map[string]any{
		"_time":  float64(1719835200),
		"src":    "10.0.0.5",
		"dest":   "10.0.0.9",
		"user":   "alice",
		"action": "failure",
		"_raw":   "login denied",
	}

	normalized := normalizeRow(mapper.MapRow(mapper.SplunkMapper{}, row))

	want := map[string]string{
		"event_ts":      "2024-07-01T12:00:00Z",
		"src_ip":        "10.0.0.5",
		"dest_ip":       "10.0.0.9",
		"user":          "alice",
		"outcome":       "failure",
		"message":       "login denied",
		"source_system": "splunk",
	}
	for field, expected := range want {
		if got := normalized[field]; got != expected {
			t.Errorf("%s = %q, want %q", field, got, expected)
		}
	}
	if fp := Fingerprint(normalized); fp == "" {
		t.Error("expected a non-empty fingerprint without a native event id")
	}
}

func TestFingerprintStable(t *testing.T) {
	row := map[string]string{
		"event_ts":      "2024-07-01T12:00:00Z",
		"source_system": "splunk",
		"event_type":    "login",
		"host":          "dc01",
		"user":          "alice",
	}

	first := Fingerprint(row)
	if len(first) != 64 {
		t.Fatalf("fingerprint length = %d, want 64 hex chars", len(first))
	}
	if Fingerprint(row) != first {
		t.Error("fingerprint not stable across calls")
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := map[string]string{
		"event_ts": "2024-07-01T12:00:00Z",
		"host":     "dc01",
		"user":     "alice",
	}
	baseFP := Fingerprint(base)

	changed := map[string]string{
		"event_ts": "2024-07-01T12:00:00Z",
		"host":     "dc01",
		"user":     "bob",
	}
	if Fingerprint(changed) == baseFP {
		t.Error("changing a hashed field did not change the fingerprint")
	}

	// Overflow fields are not part of identity.
	withExtra := map[string]string{
		"event_ts":     "2024-07-01T12:00:00Z",
		"host":         "dc01",
		"user":         "alice",
		"vendor_field": "anything",
	}
	if Fingerprint(withExtra) != baseFP {
		t.Error("extra field changed the fingerprint")
	}
}

func TestFingerprintSourceFallback(t *testing.T) {
	withSystem := Fingerprint(map[string]string{"source_system": "zeek"})
	withSource := Fingerprint(map[string]string{"source": "zeek"})
	if withSystem != withSource {
		t.Error("source fallback not applied in fingerprint")
	}
}

func TestPrepareEventNativeIDSkipsFingerprint(t *testing.T) {
	row := strictRow()
	row["source_event_id"] = "evt-449"

	event, _, err := PrepareEvent("c", "r", "1", row, mapper.SplunkMapper{}, false)
	if err != nil {
		t.Fatalf("PrepareEvent failed: %v", err)
	}
	if event.SourceEventID != "evt-449" {
		t.Errorf("SourceEventID = %q", event.SourceEventID)
	}
	if event.Fingerprint != "" {
		t.Errorf("fingerprint computed despite native id: %q", event.Fingerprint)
	}

	delete(row, "source_event_id")
	event2, _, err := PrepareEvent("c", "r", "1", strictRow(), mapper.SplunkMapper{}, false)
	if err != nil {
		t.Fatalf("PrepareEvent failed: %v", err)
	}
	if event2.Fingerprint == "" {
		t.Error("fingerprint missing without native id")
	}
}
