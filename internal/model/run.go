package model

// QueryRun is one registered export file and its ingestion lifecycle.
// Created by add-run; ingestion stamps RowCount and IngestedAt once.
type QueryRun struct {
	RunID        string `json:"run_id" db:"run_id"`
	CaseID       string `json:"case_id" db:"case_id"`
	SourceSystem string `json:"source_system" db:"source_system"`
	QueryName    string `json:"query_name" db:"query_name"`
	QueryText    string `json:"query_text" db:"query_text"`
	ExecutedAt   string `json:"executed_at" db:"executed_at"`
	TimeStart    string `json:"time_start" db:"time_start"`
	TimeEnd      string `json:"time_end" db:"time_end"`
	RawPath      string `json:"raw_path" db:"raw_path"`
	RowCount     int64  `json:"row_count" db:"row_count"`
	FileHash     string `json:"file_hash" db:"file_hash"`
	IngestedAt   string `json:"ingested_at" db:"ingested_at"`
}

// Pending reports whether the run still awaits ingestion.
func (r *QueryRun) Pending() bool {
	return r.IngestedAt == ""
}
