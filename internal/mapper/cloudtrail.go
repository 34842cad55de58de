package mapper

import "fmt"

// CloudTrailMapper maps AWS CloudTrail records to the unified schema.
// CloudTrail nests the acting identity and request parameters inside
// sub-objects; Preprocess flattens those into scratch fields that
// Postprocess reconciles.
type CloudTrailMapper struct {
	hooks
}

func (CloudTrailMapper) Name() string { return "cloudtrail" }

func (CloudTrailMapper) FieldMap() []FieldMapping {
	return []FieldMapping{
		{"eventTime", "event_ts"},
		{"eventName", "event_type"},
		{"eventType", "event_type"},
		{"eventSource", "source_name"},
		{"eventID", "event_id"},
		{"sourceIPAddress", "src_ip"},
		{"userAgent", "message"},
		{"userName", "user"},
		{"awsRegion", "host"},
		{"requestID", "session_id"},
		{"errorCode", "outcome"},
		{"errorMessage", "message"},
	}
}

func (CloudTrailMapper) Preprocess(row map[string]any) map[string]any {
	if identity, ok := asObject(row["userIdentity"]); ok {
		user := stringField(identity, "userName")
		if user == "" {
			user = stringField(identity, "principalId")
		}
		if user == "" {
			if arn := stringField(identity, "arn"); arn != "" {
				user = arn[lastSlash(arn)+1:]
			}
		}
		if user != "" {
			row["_extracted_user"] = user
		}
	}

	if params, ok := asObject(row["requestParameters"]); ok {
		if instance := stringField(params, "instanceId"); instance != "" {
			row["_extracted_host"] = instance
		}
		if bucket := stringField(params, "bucketName"); bucket != "" {
			row["_extracted_file_path"] = fmt.Sprintf("s3://%s", bucket)
		}
	}

	return row
}

func (CloudTrailMapper) Postprocess(row map[string]any) map[string]any {
	promoteScratch(row, "_extracted_user", "user")
	promoteScratch(row, "_extracted_host", "host")
	promoteScratch(row, "_extracted_file_path", "file_path")

	// CloudTrail only emits errorCode on failures.
	if v, ok := row["outcome"]; !ok || v == nil || v == "" {
		if ec, ok := row["errorCode"]; ok && ec != nil && ec != "" {
			row["outcome"] = "failure"
		} else {
			row["outcome"] = "success"
		}
	}

	setDefault(row, "source_system", "aws")
	return row
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}
