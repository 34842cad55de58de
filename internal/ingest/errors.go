package ingest

import (
	"fmt"
	"strings"
)

// DuplicateInputError means a file with the same content hash is
// already registered for the case. Surfaced to the caller, not retried.
type DuplicateInputError struct {
	RunID     string
	QueryName string
}

func (e *DuplicateInputError) Error() string {
	return fmt.Sprintf(
		"duplicate file detected: already added as run %s (query: %s); use --allow-duplicate to override",
		e.RunID, e.QueryName)
}

// UnknownRunError means the run id does not exist for the case.
type UnknownRunError struct {
	CaseID string
	RunID  string
}

func (e *UnknownRunError) Error() string {
	return fmt.Sprintf("unknown run %s for case %s", e.RunID, e.CaseID)
}

// MissingRequiredFieldsError reports every missing required field for
// one row in a single error, so callers get one actionable message.
type MissingRequiredFieldsError struct {
	Fields []string
}

func (e *MissingRequiredFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// MalformedRecordError means one row could not be parsed from the
// source file. It is row-scoped: skip-errors mode records it and
// continues.
type MalformedRecordError struct {
	Line int
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at line %d: %v", e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }
