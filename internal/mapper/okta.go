package mapper

import (
	"fmt"
	"strings"
)

// OktaMapper maps Okta System Log records to the unified schema. Okta
// nests the actor, client, outcome, and target inside sub-objects;
// Preprocess flattens them into scratch fields.
type OktaMapper struct {
	hooks
}

func (OktaMapper) Name() string { return "okta" }

func (OktaMapper) FieldMap() []FieldMapping {
	return []FieldMapping{
		{"published", "event_ts"},
		{"eventType", "event_type"},
		{"displayMessage", "message"},
		{"uuid", "event_id"},
		{"severity", "severity"},
		{"authenticationContext.externalSessionId", "session_id"},
		{"transaction.id", "session_id"},
	}
}

func (OktaMapper) Preprocess(row map[string]any) map[string]any {
	if actor, ok := asObject(row["actor"]); ok {
		user := stringField(actor, "alternateId")
		if user == "" {
			user = stringField(actor, "displayName")
		}
		if user == "" {
			user = stringField(actor, "id")
		}
		if user != "" {
			row["_extracted_user"] = user
		}
	}

	if client, ok := asObject(row["client"]); ok {
		if ip := stringField(client, "ipAddress"); ip != "" {
			row["_extracted_src_ip"] = ip
		}
	}

	if outcome, ok := asObject(row["outcome"]); ok {
		// Replace the nested object so the unified outcome column gets
		// the flat result string.
		delete(row, "outcome")
		if result := stringField(outcome, "result"); result != "" {
			row["_extracted_outcome"] = strings.ToLower(result)
		}
		if reason := stringField(outcome, "reason"); reason != "" {
			row["_extracted_outcome_reason"] = reason
		}
	}

	if targets, ok := asArray(row["target"]); ok && len(targets) > 0 {
		// Drop the nested array so the flattened value is what
		// reaches the overflow fields.
		delete(row, "target")
		if first, ok := targets[0].(map[string]any); ok {
			targetID := stringField(first, "alternateId")
			if targetID == "" {
				targetID = stringField(first, "displayName")
			}
			targetType := strings.ToLower(stringField(first, "type"))
			if targetType == "user" && targetID != "" {
				row["_extracted_target_user"] = targetID
			} else if targetID != "" {
				row["_extracted_target"] = fmt.Sprintf("%s:%s", targetType, targetID)
			}
		}
	}

	return row
}

func (OktaMapper) Postprocess(row map[string]any) map[string]any {
	promoteScratch(row, "_extracted_user", "user")
	promoteScratch(row, "_extracted_src_ip", "src_ip")
	promoteScratch(row, "_extracted_outcome", "outcome")

	// The outcome reason carries detail the display message lacks.
	if reason, ok := row["_extracted_outcome_reason"].(string); ok {
		existing, _ := row["message"].(string)
		row["message"] = strings.Trim(fmt.Sprintf("%s - %s", existing, reason), " -")
		delete(row, "_extracted_outcome_reason")
	}

	// Target details are not part of the unified schema; surface them
	// under stable names so they land in the overflow fields.
	promoteScratch(row, "_extracted_target_user", "target_user")
	promoteScratch(row, "_extracted_target", "target")

	setDefault(row, "source_system", "okta")
	return row
}
