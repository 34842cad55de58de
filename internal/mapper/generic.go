package mapper

// GenericMapper is the last-resort fallback driven by a static table of
// common field-name synonyms. It is used when no case config, shared
// config, or built-in mapper matches the source name.
type GenericMapper struct {
	hooks
}

func (GenericMapper) Name() string { return "generic" }

func (GenericMapper) FieldMap() []FieldMapping {
	return []FieldMapping{
		{"timestamp", "event_ts"},
		{"time", "event_ts"},
		{"datetime", "event_ts"},
		{"date_time", "event_ts"},
		{"created_at", "event_ts"},
		{"occurred_at", "event_ts"},
		{"@timestamp", "event_ts"},
		{"type", "event_type"},
		{"action", "event_type"},
		{"category", "event_type"},
		{"event_name", "event_type"},
		{"eventname", "event_type"},
		{"activity", "event_type"},
		{"hostname", "host"},
		{"host_name", "host"},
		{"computer", "host"},
		{"machine", "host"},
		{"device", "host"},
		{"server", "host"},
		{"device_name", "host"},
		{"username", "user"},
		{"user_name", "user"},
		{"account", "user"},
		{"account_name", "user"},
		{"principal", "user"},
		{"actor", "user"},
		{"source_ip", "src_ip"},
		{"sourceip", "src_ip"},
		{"client_ip", "src_ip"},
		{"clientip", "src_ip"},
		{"remote_ip", "src_ip"},
		{"remoteip", "src_ip"},
		{"ip_address", "src_ip"},
		{"ipaddress", "src_ip"},
		{"destination_ip", "dest_ip"},
		{"destinationip", "dest_ip"},
		{"target_ip", "dest_ip"},
		{"targetip", "dest_ip"},
		{"process", "process_name"},
		{"program", "process_name"},
		{"application", "process_name"},
		{"app", "process_name"},
		{"executable", "process_name"},
		{"image", "process_name"},
		{"command", "process_cmdline"},
		{"commandline", "process_cmdline"},
		{"command_line", "process_cmdline"},
		{"cmd", "process_cmdline"},
		{"pid", "process_id"},
		{"ppid", "parent_pid"},
		{"hash", "file_hash"},
		{"sha256", "file_hash"},
		{"sha1", "file_hash"},
		{"md5", "file_hash"},
		{"path", "file_path"},
		{"filepath", "file_path"},
		{"file", "file_name"},
		{"filename", "file_name"},
		{"port", "dest_port"},
		{"destination_port", "dest_port"},
		{"source_port", "src_port"},
		{"proto", "protocol"},
		{"domain", "dns_query"},
		{"query", "dns_query"},
		{"uri", "url"},
		{"request_url", "url"},
		{"result", "outcome"},
		{"status", "outcome"},
		{"success", "outcome"},
		{"disposition", "outcome"},
		{"level", "severity"},
		{"priority", "severity"},
		{"risk", "severity"},
		{"threat_level", "severity"},
		{"msg", "message"},
		{"description", "message"},
		{"details", "message"},
		{"summary", "message"},
		{"raw", "message"},
		{"log", "message"},
	}
}

// Postprocess infers the source-system label from a bare "source" field
// when nothing better is available.
func (GenericMapper) Postprocess(row map[string]any) map[string]any {
	if v, ok := row["source_system"]; !ok || v == nil || v == "" {
		if src, ok := row["source"]; ok && src != nil && src != "" {
			row["source_system"] = src
		}
	}
	return row
}
