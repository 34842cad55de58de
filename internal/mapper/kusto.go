package mapper

// KustoMapper maps Azure Log Analytics / Sentinel (Kusto) fields to the
// unified schema.
type KustoMapper struct {
	hooks
}

func (KustoMapper) Name() string { return "kusto" }

func (KustoMapper) FieldMap() []FieldMapping {
	return []FieldMapping{
		{"TimeGenerated", "event_ts"},
		{"Timestamp", "event_ts"},
		{"CreatedDateTime", "event_ts"},
		{"Type", "event_type"},
		{"Category", "event_type"},
		{"OperationName", "event_type"},
		{"SourceSystem", "source_name"},
		{"Computer", "host"},
		{"DeviceName", "host"},
		{"HostName", "host"},
		{"_ResourceId", "host"},
		{"SourceIP", "src_ip"},
		{"SrcIpAddr", "src_ip"},
		{"ClientIP", "src_ip"},
		{"CallerIpAddress", "src_ip"},
		{"DestinationIP", "dest_ip"},
		{"DstIpAddr", "dest_ip"},
		{"DestinationPort", "dest_port"},
		{"SourcePort", "src_port"},
		{"Account", "user"},
		{"UserPrincipalName", "user"},
		{"AccountName", "user"},
		{"TargetUserName", "user"},
		{"InitiatingUser", "user"},
		{"UserId", "user_sid"},
		{"ProcessName", "process_name"},
		{"FileName", "process_name"},
		{"Process", "process_name"},
		{"ProcessId", "process_id"},
		{"ProcessCommandLine", "process_cmdline"},
		{"CommandLine", "process_cmdline"},
		{"ParentProcessName", "parent_process_name"},
		{"InitiatingProcessFileName", "parent_process_name"},
		{"ParentProcessId", "parent_pid"},
		{"SHA256", "file_hash"},
		{"FileHash", "file_hash"},
		{"MD5", "file_hash"},
		{"FilePath", "file_path"},
		{"FolderPath", "file_path"},
		{"RegistryKey", "registry_key"},
		{"RegistryValueName", "registry_value_name"},
		{"RegistryValueData", "registry_value_data"},
		{"Url", "url"},
		{"RequestUri", "url"},
		{"RemoteUrl", "url"},
		{"DnsQuery", "dns_query"},
		{"QueryName", "dns_query"},
		{"ResultType", "outcome"},
		{"Result", "outcome"},
		{"Status", "outcome"},
		{"ResultDescription", "message"},
		{"LogonType", "logon_type"},
		{"AuthenticationMethod", "logon_type"},
		{"Severity", "severity"},
		{"AlertSeverity", "severity"},
		{"Level", "severity"},
		{"Tactics", "tactic"},
		{"Techniques", "technique"},
		{"ActivityId", "event_id"},
		{"CorrelationId", "session_id"},
		{"Message", "message"},
		{"Description", "message"},
	}
}

func (KustoMapper) Postprocess(row map[string]any) map[string]any {
	setDefault(row, "source_system", "kusto")
	return row
}
