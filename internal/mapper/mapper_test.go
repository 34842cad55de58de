package mapper

import (
	"reflect"
	"testing"
)

func TestSplunkMapRow(t *testing.T) {
	row := map[string]any{
		"_time":      float64(1719835200),
		"host":       "web01",
		"src":        "10.0.0.5",
		"dest":       "10.0.0.9",
		"user":       "alice",
		"action":     "blocked",
		"_raw":       "raw event text",
		"sourcetype": "pan:traffic",
	}

	mapped := MapRow(SplunkMapper{}, row)

	want := map[string]string{
		"event_ts":      "2024-07-01T12:00:00Z",
		"host":          "web01",
		"src_ip":        "10.0.0.5",
		"dest_ip":       "10.0.0.9",
		"user":          "alice",
		"outcome":       "blocked",
		"message":       "raw event text",
		"event_type":    "pan:traffic",
		"source_system": "splunk",
	}
	for field, expected := range want {
		if got := mapped[field]; got != expected {
			t.Errorf("%s = %v, want %q", field, got, expected)
		}
	}
}

func TestSplunkEpochStringTimestamp(t *testing.T) {
	mapped := MapRow(SplunkMapper{}, map[string]any{"_time": "1719835200"})
	if got := mapped["event_ts"]; got != "2024-07-01T12:00:00Z" {
		t.Errorf("event_ts = %v, want 2024-07-01T12:00:00Z", got)
	}
}

func TestMapRowDeterministic(t *testing.T) {
	build := func() map[string]any {
		return map[string]any{
			"_time":  float64(1719835200),
			"src":    "1.2.3.4",
			"dest":   "5.6.7.8",
			"action": "allowed",
			"extra1": "a",
			"extra2": "b",
		}
	}

	first := MapRow(SplunkMapper{}, build())
	for i := 0; i < 50; i++ {
		next := MapRow(SplunkMapper{}, build())
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("translation differs between runs: %v vs %v", first, next)
		}
	}
}

func TestLaterMappingPairWins(t *testing.T) {
	// Both "dest" and "dest_ip" target dest_ip; "dest_ip" appears later
	// in the table and must win.
	row := map[string]any{
		"dest":    "hostname",
		"dest_ip": "10.1.1.1",
	}
	mapped := MapRow(SplunkMapper{}, row)
	if got := mapped["dest_ip"]; got != "10.1.1.1" {
		t.Errorf("dest_ip = %v, want 10.1.1.1", got)
	}
}

func TestMapRowCaseInsensitiveSourceFields(t *testing.T) {
	mapped := MapRow(SplunkMapper{}, map[string]any{"HOST": "srv9"})
	if got := mapped["host"]; got != "srv9" {
		t.Errorf("host = %v, want srv9", got)
	}
}

func TestMapRowPassThroughUnmappedFields(t *testing.T) {
	mapped := MapRow(SplunkMapper{}, map[string]any{"custom_field": "kept"})
	if got := mapped["custom_field"]; got != "kept" {
		t.Errorf("custom_field = %v, want kept", got)
	}
}

func TestKustoMapRow(t *testing.T) {
	row := map[string]any{
		"TimeGenerated": "2024-07-01T12:00:00Z",
		"Computer":      "dc01",
		"AccountName":   "bob",
	}
	mapped := MapRow(KustoMapper{}, row)

	if got := mapped["event_ts"]; got != "2024-07-01T12:00:00Z" {
		t.Errorf("event_ts = %v", got)
	}
	if got := mapped["host"]; got != "dc01" {
		t.Errorf("host = %v, want dc01", got)
	}
	if got := mapped["source_system"]; got != "kusto" {
		t.Errorf("source_system = %v, want kusto", got)
	}
}

func TestCloudTrailNestedIdentity(t *testing.T) {
	row := map[string]any{
		"eventTime":       "2024-07-01T12:00:00Z",
		"eventName":       "RunInstances",
		"sourceIPAddress": "203.0.113.7",
		"userIdentity": map[string]any{
			"userName": "deployer",
		},
		"requestParameters": map[string]any{
			"instanceId": "i-0abc123",
		},
	}
	mapped := MapRow(CloudTrailMapper{}, row)

	if got := mapped["user"]; got != "deployer" {
		t.Errorf("user = %v, want deployer", got)
	}
	if got := mapped["host"]; got != "i-0abc123" {
		t.Errorf("host = %v, want i-0abc123", got)
	}
	if got := mapped["outcome"]; got != "success" {
		t.Errorf("outcome = %v, want success", got)
	}
	if got := mapped["source_system"]; got != "aws" {
		t.Errorf("source_system = %v, want aws", got)
	}
}

func TestCloudTrailErrorCodeMeansFailure(t *testing.T) {
	row := map[string]any{
		"eventTime": "2024-07-01T12:00:00Z",
		"eventName": "AssumeRole",
		"errorCode": "AccessDenied",
	}
	mapped := MapRow(CloudTrailMapper{}, row)
	if got := mapped["outcome"]; got != "AccessDenied" {
		t.Errorf("outcome = %v, want AccessDenied", got)
	}
}

func TestCloudTrailArnFallbackUser(t *testing.T) {
	row := map[string]any{
		"userIdentity": map[string]any{
			"arn": "arn:aws:iam::111122223333:role/service/ci-runner",
		},
	}
	mapped := MapRow(CloudTrailMapper{}, row)
	if got := mapped["user"]; got != "ci-runner" {
		t.Errorf("user = %v, want ci-runner", got)
	}
}

func TestOktaNestedExtraction(t *testing.T) {
	row := map[string]any{
		"published":      "2024-07-01T12:00:00Z",
		"eventType":      "user.session.start",
		"displayMessage": "User login to Okta",
		"actor": map[string]any{
			"alternateId": "carol@example.com",
		},
		"client": map[string]any{
			"ipAddress": "198.51.100.4",
		},
		"outcome": map[string]any{
			"result": "FAILURE",
			"reason": "INVALID_CREDENTIALS",
		},
	}
	mapped := MapRow(OktaMapper{}, row)

	if got := mapped["user"]; got != "carol@example.com" {
		t.Errorf("user = %v", got)
	}
	if got := mapped["src_ip"]; got != "198.51.100.4" {
		t.Errorf("src_ip = %v", got)
	}
	if got := mapped["outcome"]; got != "failure" {
		t.Errorf("outcome = %v, want failure", got)
	}
	if got := mapped["message"]; got != "User login to Okta - INVALID_CREDENTIALS" {
		t.Errorf("message = %v", got)
	}
	if got := mapped["source_system"]; got != "okta" {
		t.Errorf("source_system = %v, want okta", got)
	}
}

func TestOktaTargetLandsInOverflowNames(t *testing.T) {
	row := map[string]any{
		"published": "2024-07-01T12:00:00Z",
		"target": []any{
			map[string]any{"type": "AppInstance", "alternateId": "gitlab"},
		},
	}
	mapped := MapRow(OktaMapper{}, row)
	if got := mapped["target"]; got != "appinstance:gitlab" {
		t.Errorf("target = %v, want appinstance:gitlab", got)
	}
}

func TestOktaTargetUserFlattened(t *testing.T) {
	row := map[string]any{
		"published": "2024-07-01T12:00:00Z",
		"target": []any{
			map[string]any{"type": "User", "alternateId": "dave@example.com"},
		},
	}
	mapped := MapRow(OktaMapper{}, row)
	if got := mapped["target_user"]; got != "dave@example.com" {
		t.Errorf("target_user = %v, want dave@example.com", got)
	}
	if _, ok := mapped["target"]; ok {
		t.Error("raw target array survived flattening")
	}
}

func TestGenericMapperInfersSourceSystem(t *testing.T) {
	row := map[string]any{
		"timestamp": "2024-07-01T12:00:00Z",
		"source":    "custom-edr",
		"hostname":  "lap-42",
	}
	mapped := MapRow(GenericMapper{}, row)

	if got := mapped["event_ts"]; got != "2024-07-01T12:00:00Z" {
		t.Errorf("event_ts = %v", got)
	}
	if got := mapped["host"]; got != "lap-42" {
		t.Errorf("host = %v, want lap-42", got)
	}
	if got := mapped["source_system"]; got != "custom-edr" {
		t.Errorf("source_system = %v, want custom-edr", got)
	}
}
