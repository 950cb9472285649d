package models

import "encoding/json"

// FinalOutput describes a schema-bound terminal result for a reply. When a
// caller attaches a JSONSchema, the core injects a synthetic final_output
// tool; Collected holds whatever arguments that tool was last called with,
// once the agent has produced one.
type FinalOutput struct {
	// JSONSchema is the JSON Schema object the collected value must satisfy.
	JSONSchema json.RawMessage `json:"json_schema"`

	// Collected is the value the agent supplied via the final_output tool.
	// Nil until the tool has been called.
	Collected json.RawMessage `json:"collected,omitempty"`
}
