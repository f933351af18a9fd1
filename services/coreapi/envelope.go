package coreapi

import (
	"encoding/json"
	"fmt"
)

// apiEnvelope is the core backend's response wrapper. The data field is
// usually a structured object but some deployments return it as a
// JSON-encoded string; decodeData absorbs both shapes so nothing past this
// boundary branches on response shape.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// decodeData unmarshals the envelope data into v, unwrapping a
// string-encoded payload first when necessary.
func decodeData(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty response payload")
	}
	if raw[0] == '"' {
		var nested string
		if err := json.Unmarshal(raw, &nested); err != nil {
			return fmt.Errorf("failed to unquote string payload: %w", err)
		}
		raw = json.RawMessage(nested)
		if len(raw) == 0 {
			return fmt.Errorf("empty nested payload")
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse response payload: %w", err)
	}
	return nil
}
