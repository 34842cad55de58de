package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prose66/InvestigationWorkbench/internal/database"
	"github.com/prose66/InvestigationWorkbench/internal/model"
)

func seededStore(t *testing.T) database.Store {
	t.Helper()
	db, err := database.CreateSQLite(filepath.Join(t.TempDir(), "workbench.db"))
	if err != nil {
		t.Fatalf("creating test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	run := &model.QueryRun{
		RunID:        "run-1",
		CaseID:       "case-1",
		SourceSystem: "splunk",
		QueryName:    "auth-events",
		RawPath:      "/tmp/raw.ndjson",
		FileHash:     "h",
	}
	if err := db.CreateRun(run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	events := []*model.Event{
		{
			CaseID: "case-1", RunID: "run-1", RawRef: "1",
			EventTS: "2024-07-01T14:00:00Z", SourceSystem: "splunk",
			EventType: "login", Host: "dc01", User: "bob",
			Fingerprint: "fp-b",
		},
		{
			CaseID: "case-1", RunID: "run-1", RawRef: "2",
			EventTS: "2024-07-01T09:00:00Z", SourceSystem: "splunk",
			EventType: "login", Host: "dc01", User: "alice",
			Fingerprint: "fp-a",
		},
	}
	if _, err := db.InsertEvents(events); err != nil {
		t.Fatalf("InsertEvents failed: %v", err)
	}
	return db
}

func TestTimelineCSV(t *testing.T) {
	db := seededStore(t)
	exportsDir := t.TempDir()

	path, rows, err := Timeline(db, "case-1", exportsDir, FormatCSV)
	if err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}
	if rows != 2 {
		t.Errorf("rows = %d, want 2", rows)
	}
	if !strings.HasSuffix(path, ".csv") {
		t.Errorf("path = %q, want .csv", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading export CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2 rows", len(records))
	}

	header := records[0]
	if header[0] != "case_id" {
		t.Errorf("header starts with %q", header[0])
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}

	// Ordered by event_ts: alice's 09:00 event first.
	if records[1][col["user"]] != "alice" || records[2][col["user"]] != "bob" {
		t.Errorf("rows out of order: %v / %v", records[1][col["user"]], records[2][col["user"]])
	}
	if records[1][col["query_name"]] != "auth-events" {
		t.Errorf("run metadata missing: %q", records[1][col["query_name"]])
	}
}

func TestTimelineNDJSON(t *testing.T) {
	db := seededStore(t)
	exportsDir := t.TempDir()

	path, rows, err := Timeline(db, "case-1", exportsDir, FormatNDJSON)
	if err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}
	if rows != 2 {
		t.Errorf("rows = %d, want 2", rows)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer f.Close()

	var users []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		record := map[string]string{}
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("bad NDJSON line: %v", err)
		}
		// Empty fields are omitted entirely.
		if _, ok := record["dns_query"]; ok {
			t.Error("empty field serialized")
		}
		users = append(users, record["user"])
	}
	if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
		t.Errorf("users = %v, want [alice bob]", users)
	}
}

func TestTimelineUnsupportedFormat(t *testing.T) {
	db := seededStore(t)
	if _, _, err := Timeline(db, "case-1", t.TempDir(), "parquet"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
