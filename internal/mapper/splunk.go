package mapper

// SplunkMapper maps Splunk export fields to the unified schema.
type SplunkMapper struct {
	hooks
}

func (SplunkMapper) Name() string { return "splunk" }

func (SplunkMapper) FieldMap() []FieldMapping {
	return []FieldMapping{
		{"_time", "event_ts"},
		{"sourcetype", "event_type"},
		{"source", "source_name"},
		{"index", "source_name"},
		{"host", "host"},
		{"src", "src_ip"},
		{"src_ip", "src_ip"},
		{"dest", "dest_ip"},
		{"dest_ip", "dest_ip"},
		{"src_port", "src_port"},
		{"dest_port", "dest_port"},
		{"user", "user"},
		{"src_user", "user"},
		{"Account_Name", "user"},
		{"process", "process_name"},
		{"process_name", "process_name"},
		{"process_id", "process_id"},
		{"parent_process", "parent_process_name"},
		{"parent_process_id", "parent_pid"},
		{"cmdline", "process_cmdline"},
		{"CommandLine", "process_cmdline"},
		{"file_hash", "file_hash"},
		{"file_path", "file_path"},
		{"file_name", "file_name"},
		{"url", "url"},
		{"http_method", "http_method"},
		{"status", "http_status"},
		{"bytes_in", "bytes_in"},
		{"bytes_out", "bytes_out"},
		{"protocol", "protocol"},
		{"query", "dns_query"},
		{"action", "outcome"},
		{"result", "outcome"},
		{"signature", "event_type"},
		{"EventCode", "event_id"},
		{"LogonType", "logon_type"},
		{"severity", "severity"},
		{"priority", "severity"},
		{"_raw", "message"},
		{"message", "message"},
	}
}

// Transform converts Splunk _time values, which can be epoch seconds or
// an ISO string, into ISO-8601 UTC.
func (SplunkMapper) Transform(unifiedField string, value any) any {
	if unifiedField == "event_ts" {
		if iso, ok := epochToISO(value); ok {
			return iso
		}
	}
	return value
}

func (SplunkMapper) Postprocess(row map[string]any) map[string]any {
	setDefault(row, "source_system", "splunk")
	return row
}
