package ingest

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Row is one raw source record with its 1-based line number in the
// archived file.
type Row struct {
	Line   int
	Fields map[string]any
}

// RowReader streams rows from an export file one at a time, so memory
// use is bounded by batch size rather than file size. Next returns
// io.EOF at end of input. A *MalformedRecordError return is row-scoped:
// the reader stays usable and the caller decides to skip or abort.
type RowReader interface {
	Next() (*Row, error)
	Close() error
}

// OpenRows opens an export file and picks a reader by extension:
// .csv gets the header-driven CSV reader, everything else is treated as
// newline-delimited JSON, falling back to CSV when the first line is
// not a JSON object.
func OpenRows(path string) (RowReader, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return openCSV(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export file: %w", err)
	}

	// Peek the first non-empty line. A line opening with '{' is
	// attempted JSON even if it does not parse; it must flow through
	// the NDJSON reader so the bad row surfaces as a row-scoped error
	// instead of the whole file being misread as CSV.
	peek := bufio.NewScanner(f)
	peek.Buffer(make([]byte, 0, 1024*1024), maxLineBytes)
	isJSON := false
	for peek.Scan() {
		line := strings.TrimSpace(peek.Text())
		if line == "" {
			continue
		}
		isJSON = line[0] == '{'
		break
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("rewinding export file: %w", err)
	}

	if !isJSON {
		f.Close()
		return openCSV(path)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineBytes)
	return &ndjsonReader{f: f, scanner: scanner}, nil
}

// Some SIEM exports pack an entire raw event into one line.
const maxLineBytes = 10 * 1024 * 1024

type ndjsonReader struct {
	f       *os.File
	scanner *bufio.Scanner
	line    int
}

func (r *ndjsonReader) Next() (*Row, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}

		fields := make(map[string]any)
		if err := json.Unmarshal([]byte(text), &fields); err != nil {
			return nil, &MalformedRecordError{Line: r.line, Err: err}
		}
		return &Row{Line: r.line, Fields: fields}, nil
	}

	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading line %d: %w", r.line+1, err)
	}
	return nil, io.EOF
}

func (r *ndjsonReader) Close() error { return r.f.Close() }

type csvReader struct {
	f      *os.File
	reader *csv.Reader
	header []string
	line   int
}

func openCSV(path string) (*csvReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export file: %w", err)
	}

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // allow variable field counts

	header, err := reader.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	return &csvReader{f: f, reader: reader, header: header, line: 1}, nil
}

func (r *csvReader) Next() (*Row, error) {
	record, err := r.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	r.line++
	if err != nil {
		return nil, &MalformedRecordError{Line: r.line, Err: err}
	}

	fields := make(map[string]any, len(record))
	for i, value := range record {
		if i >= len(r.header) {
			break
		}
		fields[r.header[i]] = value
	}
	return &Row{Line: r.line, Fields: fields}, nil
}

func (r *csvReader) Close() error { return r.f.Close() }
