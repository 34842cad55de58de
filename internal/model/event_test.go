package model

import "testing"

func TestColumnValuesMatchesEventColumns(t *testing.T) {
	e := &Event{}
	values := e.ColumnValues()
	if len(values) != len(EventColumns) {
		t.Fatalf("ColumnValues returns %d values for %d columns", len(values), len(EventColumns))
	}
}

func TestSetFieldRoundTrip(t *testing.T) {
	e := &Event{CaseID: "c", RunID: "r", RawRef: "1"}
	e.Fingerprint = "fp"

	// Every settable column must land in the matching ColumnValues slot.
	for i, name := range EventColumns {
		switch name {
		case "case_id", "run_id", "raw_ref", "fingerprint":
			continue
		}
		e.SetField(name, "v-"+name)
		if got := e.ColumnValues()[i]; got != "v-"+name {
			t.Errorf("SetField(%q) not reflected in column %d: got %q", name, i, got)
		}
	}
}

func TestSetFieldIgnoresUnknownNames(t *testing.T) {
	e := &Event{}
	e.SetField("vendor_only_field", "x")
	for i, v := range e.ColumnValues() {
		if v != "" {
			t.Errorf("unknown field leaked into column %s", EventColumns[i])
		}
	}
}

func TestKnownFieldsCoverSchema(t *testing.T) {
	for _, f := range RequiredFields {
		if !KnownFields[f] {
			t.Errorf("required field %q not known", f)
		}
	}
	for _, f := range ExtendedFields {
		if !KnownFields[f] {
			t.Errorf("extended field %q not known", f)
		}
	}
	if KnownFields["totally_custom"] {
		t.Error("unexpected field marked known")
	}
}
