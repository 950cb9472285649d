package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goose-agent/goose/pkg/models"
)

// FinalOutputRegistry holds the schema-bound terminal slot for a single
// reply. A caller that wants structured output installs a schema;
// the runtime injects a synthetic final_output tool that validates its
// arguments against the schema and stores them as Collected. Mirrors the
// mutex-guarded shared registry shape of PluginRegistry.
type FinalOutputRegistry struct {
	mu        sync.Mutex
	schema    *jsonschema.Schema
	rawJSON   json.RawMessage
	collected json.RawMessage
}

// NewFinalOutputRegistry compiles schema and returns a registry ready to
// back a final_output tool. schema must be a valid JSON Schema object.
func NewFinalOutputRegistry(schema json.RawMessage) (*FinalOutputRegistry, error) {
	compiled, err := compileFinalOutputSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("compile final_output schema: %w", err)
	}
	return &FinalOutputRegistry{schema: compiled, rawJSON: schema}, nil
}

func compileFinalOutputSchema(schema json.RawMessage) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	const resourceName = "final_output.json"
	if err := compiler.AddResource(resourceName, bytes.NewReader(schema)); err != nil {
		return nil, err
	}
	return compiler.Compile(resourceName)
}

// Collected returns the value the agent supplied via final_output, and
// whether the slot has been filled yet.
func (f *FinalOutputRegistry) Collected() (json.RawMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.collected == nil {
		return nil, false
	}
	return f.collected, true
}

// FinalOutput returns the current state as a models.FinalOutput value.
func (f *FinalOutputRegistry) FinalOutput() models.FinalOutput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.FinalOutput{JSONSchema: f.rawJSON, Collected: f.collected}
}

// Tool returns the synthetic final_output tool backed by this registry.
func (f *FinalOutputRegistry) Tool() Tool {
	return &finalOutputTool{registry: f}
}

const finalOutputToolName = "final_output"

// finalOutputTool is the synthetic tool injected when a schema is
// installed. Its sole side effect is validating and
// storing its arguments; it never touches the outside world.
type finalOutputTool struct {
	registry *FinalOutputRegistry
}

func (t *finalOutputTool) Name() string { return finalOutputToolName }

func (t *finalOutputTool) Description() string {
	return "Terminates the reply by supplying the final structured result. " +
		"Call this exactly once, with arguments conforming to the installed schema, " +
		"when you have finished the task."
}

func (t *finalOutputTool) Schema() json.RawMessage {
	return t.registry.rawJSON
}

func (t *finalOutputTool) Execute(_ context.Context, params json.RawMessage) (*ToolResult, error) {
	var generic any
	if err := json.Unmarshal(params, &generic); err != nil {
		return &ToolResult{Content: fmt.Sprintf("invalid JSON arguments: %v", err), IsError: true}, nil
	}
	if err := t.registry.schema.Validate(generic); err != nil {
		return &ToolResult{Content: fmt.Sprintf("arguments do not satisfy the final_output schema: %v", err), IsError: true}, nil
	}

	t.registry.mu.Lock()
	t.registry.collected = append(json.RawMessage(nil), params...)
	t.registry.mu.Unlock()

	return &ToolResult{Content: "final output recorded"}, nil
}

// finalOutputContinuationPrompt is appended as a user message when a turn
// ends with no tool call and no final_output call while a schema is
// installed.
const finalOutputContinuationPrompt = "Call final_output with the collected result."
