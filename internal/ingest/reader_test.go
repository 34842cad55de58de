package ingest

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readAll(t *testing.T, r RowReader) []*Row {
	t.Helper()
	var rows []*Row
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return rows
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		rows = append(rows, row)
	}
}

func TestNDJSONReader(t *testing.T) {
	path := writeFile(t, "events.ndjson",
		`{"host":"a","n":1}`+"\n"+
			"\n"+ // blank lines are skipped
			`{"host":"b","n":2}`+"\n")

	r, err := OpenRows(path)
	if err != nil {
		t.Fatalf("OpenRows failed: %v", err)
	}
	defer r.Close()

	rows := readAll(t, r)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Fields["host"] != "a" || rows[1].Fields["host"] != "b" {
		t.Errorf("rows out of order: %v", rows)
	}
	if rows[0].Line != 1 || rows[1].Line != 3 {
		t.Errorf("line numbers = %d, %d; want 1, 3", rows[0].Line, rows[1].Line)
	}
}

func TestNDJSONMalformedLineIsRowScoped(t *testing.T) {
	path := writeFile(t, "events.ndjson",
		`{"host":"a"}`+"\n"+
			`{not json`+"\n"+
			`{"host":"c"}`+"\n")

	r, err := OpenRows(path)
	if err != nil {
		t.Fatalf("OpenRows failed: %v", err)
	}
	defer r.Close()

	if _, err := r.Next(); err != nil {
		t.Fatalf("first row failed: %v", err)
	}

	_, err = r.Next()
	var malformed *MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want MalformedRecordError", err)
	}
	if malformed.Line != 2 {
		t.Errorf("malformed line = %d, want 2", malformed.Line)
	}

	// The reader must stay usable after a bad row.
	row, err := r.Next()
	if err != nil {
		t.Fatalf("row after malformed failed: %v", err)
	}
	if row.Fields["host"] != "c" {
		t.Errorf("host = %v, want c", row.Fields["host"])
	}
}

func TestCSVReader(t *testing.T) {
	path := writeFile(t, "events.csv",
		"host,user,action\n"+
			"web01,alice,allowed\n"+
			"web02,bob,blocked\n")

	r, err := OpenRows(path)
	if err != nil {
		t.Fatalf("OpenRows failed: %v", err)
	}
	defer r.Close()

	rows := readAll(t, r)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Fields["host"] != "web01" || rows[0].Fields["action"] != "allowed" {
		t.Errorf("first row = %v", rows[0].Fields)
	}
	// Header is line 1; data rows start at 2.
	if rows[0].Line != 2 || rows[1].Line != 3 {
		t.Errorf("line numbers = %d, %d; want 2, 3", rows[0].Line, rows[1].Line)
	}
}

func TestFormatInferenceJSONWithoutExtension(t *testing.T) {
	path := writeFile(t, "export.txt", `{"host":"a"}`+"\n")

	r, err := OpenRows(path)
	if err != nil {
		t.Fatalf("OpenRows failed: %v", err)
	}
	defer r.Close()

	rows := readAll(t, r)
	if len(rows) != 1 || rows[0].Fields["host"] != "a" {
		t.Errorf("inference picked wrong reader: %v", rows)
	}
}

func TestFormatInferenceBadFirstJSONLineStaysNDJSON(t *testing.T) {
	// A first line that opens with '{' but fails to parse is still an
	// NDJSON file; it must not be reinterpreted as CSV with a junk
	// header.
	path := writeFile(t, "export.log",
		"{broken\n"+
			`{"host":"a"}`+"\n"+
			`{"host":"b"}`+"\n")

	r, err := OpenRows(path)
	if err != nil {
		t.Fatalf("OpenRows failed: %v", err)
	}
	defer r.Close()

	_, err = r.Next()
	var malformed *MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Fatalf("first row err = %v, want MalformedRecordError", err)
	}

	var hosts []string
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		hosts = append(hosts, row.Fields["host"].(string))
	}
	if len(hosts) != 2 || hosts[0] != "a" || hosts[1] != "b" {
		t.Errorf("remaining rows = %v, want [a b]", hosts)
	}
}

func TestFormatInferenceFallsBackToCSV(t *testing.T) {
	path := writeFile(t, "export.log",
		"host,user\n"+
			"web01,alice\n")

	r, err := OpenRows(path)
	if err != nil {
		t.Fatalf("OpenRows failed: %v", err)
	}
	defer r.Close()

	rows := readAll(t, r)
	if len(rows) != 1 || rows[0].Fields["user"] != "alice" {
		t.Errorf("CSV fallback failed: %v", rows)
	}
}
