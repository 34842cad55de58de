package model

// RequiredFields is the full required-field set enforced by strict
// validation. The resolved source-system label is checked separately
// because it may come from either "source_system" or "source".
var RequiredFields = []string{
	"event_ts",
	"event_type",
	"host",
	"user",
	"src_ip",
	"dest_ip",
	"process_name",
	"process_cmdline",
	"file_hash",
	"outcome",
	"severity",
	"message",
}

// MinimalRequiredFields is the lenient-mode required set.
var MinimalRequiredFields = []string{"event_ts", "event_type"}

// ExtendedFields are the optional unified-schema fields beyond the
// required core.
var ExtendedFields = []string{
	"event_id",
	"logon_type",
	"session_id",
	"user_sid",
	"integrity_level",
	"process_id",
	"parent_pid",
	"parent_process_name",
	"parent_process_cmdline",
	"file_path",
	"file_name",
	"file_extension",
	"file_size",
	"file_owner",
	"registry_hive",
	"registry_key",
	"registry_value",
	"registry_value_name",
	"registry_value_type",
	"registry_value_data",
	"dns_query",
	"url",
	"http_method",
	"http_status",
	"bytes_in",
	"bytes_out",
	"src_port",
	"dest_port",
	"protocol",
	"artifact_type",
	"artifact_path",
	"edr_alert_id",
	"tactic",
	"technique",
}

// bookkeepingFields are names reserved for provenance and run metadata.
// They are part of the known set so they never spill into extras.
var bookkeepingFields = []string{
	"source",
	"source_system",
	"source_name",
	"run_id",
	"query_name",
	"query_text",
	"executed_at",
	"time_start",
	"time_end",
	"source_event_id",
	"raw_json",
	"extras_json",
}

// KnownFields is the process-wide set used to classify overflow: any
// translated field name outside this set is captured as an ExtraField.
// Computed once at package init, never mutated.
var KnownFields = buildKnownFields()

func buildKnownFields() map[string]bool {
	known := make(map[string]bool, len(RequiredFields)+len(ExtendedFields)+len(bookkeepingFields))
	for _, f := range RequiredFields {
		known[f] = true
	}
	for _, f := range ExtendedFields {
		known[f] = true
	}
	for _, f := range bookkeepingFields {
		known[f] = true
	}
	return known
}

// EventColumns is the ordered list of columns in the events table,
// excluding the surrogate event_pk. Insert statements and timeline
// scans rely on this order; do not reorder.
var EventColumns = []string{
	"case_id", "run_id", "event_ts", "source_system", "source_name",
	"event_type", "host", "user", "src_ip", "dest_ip",
	"process_name", "process_cmdline", "process_id", "parent_pid",
	"parent_process_name", "parent_process_cmdline", "file_hash",
	"file_path", "file_name", "file_extension", "file_size", "file_owner",
	"registry_hive", "registry_key", "registry_value", "registry_value_name",
	"registry_value_type", "registry_value_data", "dns_query", "url",
	"http_method", "http_status", "bytes_in", "bytes_out", "src_port",
	"dest_port", "protocol", "event_id", "logon_type", "session_id",
	"user_sid", "integrity_level", "artifact_type", "artifact_path",
	"edr_alert_id", "tactic", "technique", "outcome", "severity",
	"message", "source_event_id", "raw_ref", "raw_json", "extras_json",
	"fingerprint",
}

// Event is one normalized record in the unified schema. Empty string
// means the field is absent; the store maps empty strings to SQL NULL.
// Events are created once during ingestion and never mutated.
type Event struct {
	PK                   int64  `json:"event_pk" db:"event_pk"`
	CaseID               string `json:"case_id" db:"case_id"`
	RunID                string `json:"run_id" db:"run_id"`
	EventTS              string `json:"event_ts" db:"event_ts"`
	SourceSystem         string `json:"source_system" db:"source_system"`
	SourceName           string `json:"source_name" db:"source_name"`
	EventType            string `json:"event_type" db:"event_type"`
	Host                 string `json:"host" db:"host"`
	User                 string `json:"user" db:"user"`
	SrcIP                string `json:"src_ip" db:"src_ip"`
	DestIP               string `json:"dest_ip" db:"dest_ip"`
	ProcessName          string `json:"process_name" db:"process_name"`
	ProcessCmdline       string `json:"process_cmdline" db:"process_cmdline"`
	ProcessID            string `json:"process_id" db:"process_id"`
	ParentPID            string `json:"parent_pid" db:"parent_pid"`
	ParentProcessName    string `json:"parent_process_name" db:"parent_process_name"`
	ParentProcessCmdline string `json:"parent_process_cmdline" db:"parent_process_cmdline"`
	FileHash             string `json:"file_hash" db:"file_hash"`
	FilePath             string `json:"file_path" db:"file_path"`
	FileName             string `json:"file_name" db:"file_name"`
	FileExtension        string `json:"file_extension" db:"file_extension"`
	FileSize             string `json:"file_size" db:"file_size"`
	FileOwner            string `json:"file_owner" db:"file_owner"`
	RegistryHive         string `json:"registry_hive" db:"registry_hive"`
	RegistryKey          string `json:"registry_key" db:"registry_key"`
	RegistryValue        string `json:"registry_value" db:"registry_value"`
	RegistryValueName    string `json:"registry_value_name" db:"registry_value_name"`
	RegistryValueType    string `json:"registry_value_type" db:"registry_value_type"`
	RegistryValueData    string `json:"registry_value_data" db:"registry_value_data"`
	DNSQuery             string `json:"dns_query" db:"dns_query"`
	URL                  string `json:"url" db:"url"`
	HTTPMethod           string `json:"http_method" db:"http_method"`
	HTTPStatus           string `json:"http_status" db:"http_status"`
	BytesIn              string `json:"bytes_in" db:"bytes_in"`
	BytesOut             string `json:"bytes_out" db:"bytes_out"`
	SrcPort              string `json:"src_port" db:"src_port"`
	DestPort             string `json:"dest_port" db:"dest_port"`
	Protocol             string `json:"protocol" db:"protocol"`
	EventID              string `json:"event_id" db:"event_id"`
	LogonType            string `json:"logon_type" db:"logon_type"`
	SessionID            string `json:"session_id" db:"session_id"`
	UserSID              string `json:"user_sid" db:"user_sid"`
	IntegrityLevel       string `json:"integrity_level" db:"integrity_level"`
	ArtifactType         string `json:"artifact_type" db:"artifact_type"`
	ArtifactPath         string `json:"artifact_path" db:"artifact_path"`
	EDRAlertID           string `json:"edr_alert_id" db:"edr_alert_id"`
	Tactic               string `json:"tactic" db:"tactic"`
	Technique            string `json:"technique" db:"technique"`
	Outcome              string `json:"outcome" db:"outcome"`
	Severity             string `json:"severity" db:"severity"`
	Message              string `json:"message" db:"message"`
	SourceEventID        string `json:"source_event_id" db:"source_event_id"`
	RawRef               string `json:"raw_ref" db:"raw_ref"`
	RawJSON              string `json:"raw_json" db:"raw_json"`
	ExtrasJSON           string `json:"extras_json" db:"extras_json"`
	Fingerprint          string `json:"fingerprint" db:"fingerprint"`
}

// ColumnValues returns the event's values in EventColumns order.
func (e *Event) ColumnValues() []string {
	return []string{
		e.CaseID, e.RunID, e.EventTS, e.SourceSystem, e.SourceName,
		e.EventType, e.Host, e.User, e.SrcIP, e.DestIP,
		e.ProcessName, e.ProcessCmdline, e.ProcessID, e.ParentPID,
		e.ParentProcessName, e.ParentProcessCmdline, e.FileHash,
		e.FilePath, e.FileName, e.FileExtension, e.FileSize, e.FileOwner,
		e.RegistryHive, e.RegistryKey, e.RegistryValue, e.RegistryValueName,
		e.RegistryValueType, e.RegistryValueData, e.DNSQuery, e.URL,
		e.HTTPMethod, e.HTTPStatus, e.BytesIn, e.BytesOut, e.SrcPort,
		e.DestPort, e.Protocol, e.EventID, e.LogonType, e.SessionID,
		e.UserSID, e.IntegrityLevel, e.ArtifactType, e.ArtifactPath,
		e.EDRAlertID, e.Tactic, e.Technique, e.Outcome, e.Severity,
		e.Message, e.SourceEventID, e.RawRef, e.RawJSON, e.ExtrasJSON,
		e.Fingerprint,
	}
}

// SetField assigns a unified-schema value by column name. Unknown names
// are ignored so callers can iterate a normalized row directly.
func (e *Event) SetField(name, value string) {
	switch name {
	case "event_ts":
		e.EventTS = value
	case "source_system":
		e.SourceSystem = value
	case "source_name":
		e.SourceName = value
	case "event_type":
		e.EventType = value
	case "host":
		e.Host = value
	case "user":
		e.User = value
	case "src_ip":
		e.SrcIP = value
	case "dest_ip":
		e.DestIP = value
	case "process_name":
		e.ProcessName = value
	case "process_cmdline":
		e.ProcessCmdline = value
	case "process_id":
		e.ProcessID = value
	case "parent_pid":
		e.ParentPID = value
	case "parent_process_name":
		e.ParentProcessName = value
	case "parent_process_cmdline":
		e.ParentProcessCmdline = value
	case "file_hash":
		e.FileHash = value
	case "file_path":
		e.FilePath = value
	case "file_name":
		e.FileName = value
	case "file_extension":
		e.FileExtension = value
	case "file_size":
		e.FileSize = value
	case "file_owner":
		e.FileOwner = value
	case "registry_hive":
		e.RegistryHive = value
	case "registry_key":
		e.RegistryKey = value
	case "registry_value":
		e.RegistryValue = value
	case "registry_value_name":
		e.RegistryValueName = value
	case "registry_value_type":
		e.RegistryValueType = value
	case "registry_value_data":
		e.RegistryValueData = value
	case "dns_query":
		e.DNSQuery = value
	case "url":
		e.URL = value
	case "http_method":
		e.HTTPMethod = value
	case "http_status":
		e.HTTPStatus = value
	case "bytes_in":
		e.BytesIn = value
	case "bytes_out":
		e.BytesOut = value
	case "src_port":
		e.SrcPort = value
	case "dest_port":
		e.DestPort = value
	case "protocol":
		e.Protocol = value
	case "event_id":
		e.EventID = value
	case "logon_type":
		e.LogonType = value
	case "session_id":
		e.SessionID = value
	case "user_sid":
		e.UserSID = value
	case "integrity_level":
		e.IntegrityLevel = value
	case "artifact_type":
		e.ArtifactType = value
	case "artifact_path":
		e.ArtifactPath = value
	case "edr_alert_id":
		e.EDRAlertID = value
	case "tactic":
		e.Tactic = value
	case "technique":
		e.Technique = value
	case "outcome":
		e.Outcome = value
	case "severity":
		e.Severity = value
	case "message":
		e.Message = value
	case "source_event_id":
		e.SourceEventID = value
	case "raw_json":
		e.RawJSON = value
	case "extras_json":
		e.ExtrasJSON = value
	}
}

// ExtraField is one (event, name, value) overflow triple for a source
// column outside the unified schema. Before the parent event's surrogate
// key exists, staging rows carry (case, run, raw_ref) as a natural key.
type ExtraField struct {
	EventPK int64  `json:"event_pk" db:"event_pk"`
	CaseID  string `json:"case_id" db:"case_id"`
	RunID   string `json:"run_id" db:"run_id"`
	RawRef  string `json:"raw_ref" db:"raw_ref"`
	Name    string `json:"field_name" db:"field_name"`
	Value   string `json:"field_value" db:"field_value"`
}
