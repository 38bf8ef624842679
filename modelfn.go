package modelfn

import (
	"context"
	"encoding/json"
	"time"
)

// Tool is the contract for a model-callable instrument.
// It is provider-agnostic (no knowledge of OpenAI, Anthropic, etc.).
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the argument JSON Schema as a map, or nil for
	// zero-argument tools (the tool-list entry then omits parameters).
	Parameters() map[string]any
	// Call validates argsJSON, runs the implementation, and returns the
	// result serialized as wire-safe text: string results pass through
	// untouched, numbers render as decimal text, everything else is
	// JSON-encoded.
	Call(ctx context.Context, argsJSON []byte) (string, error)
}

// ToolMetadata is implemented by tools created with the typed constructors
// and provides optional per-tool settings. Registry uses Timeout() to
// override the default execution timeout when set. Other methods expose
// tags, version, and dangerous flag for orchestration or discovery.
type ToolMetadata interface {
	Timeout() time.Duration
	Tags() []string
	Version() string
	IsDangerous() bool
}

// ResultDescriber is implemented by tools that know the JSON Schema of the
// value they produce. FormatTools appends this schema to the tool
// description so the model knows the shape of tool replies.
type ResultDescriber interface {
	ResultSchema() map[string]any
}

// ToolCall is a single execution request as produced by the model.
type ToolCall struct {
	ID       string
	ToolName string
	Args     json.RawMessage // JSON payload of arguments
}

// RoleTool is the wire role of a tool reply message.
const RoleTool = "tool"

// ToolResult is one tool reply message, id-correlated with its originating
// ToolCall. It marshals directly to the protocol's tool message shape.
type ToolResult struct {
	Role    string `json:"role"`
	ID      string `json:"tool_call_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ToolSpec is one entry of the tool-list wire format sent to the model.
type ToolSpec struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec describes a callable function inside a ToolSpec.
// Parameters is omitted for zero-argument tools.
type FunctionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}
