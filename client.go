package modelfn

import "context"

// Message roles on the chat wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat message sent to the model.
type Message struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// Response format types understood by ChatClient implementations.
const (
	FormatJSONObject = "json_object"
	FormatJSONSchema = "json_schema"
)

// ResponseFormat requests a constrained response mode from the provider.
// Schema and Name are set only for FormatJSONSchema.
type ResponseFormat struct {
	Type   string
	Name   string
	Schema map[string]any
}

// ChatRequest is a single completion request. The core builds it; transport,
// auth, and retries belong to the ChatClient implementation.
type ChatRequest struct {
	Model          string
	Messages       []Message
	ResponseFormat *ResponseFormat
	Tools          []ToolSpec
}

// ModelToolCall is a tool invocation requested by the model.
type ModelToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON-encoded
}

// AssistantMessage is the model's reply inside a Choice.
type AssistantMessage struct {
	Content   string
	ToolCalls []ModelToolCall
}

// Choice is one completion alternative.
type Choice struct {
	Message AssistantMessage
}

// ChatResponse is the provider-agnostic completion result.
type ChatResponse struct {
	Choices []Choice
}

// ChatClient is the external completion boundary. Implementations own
// transport, auth, and any retry policy; the core performs exactly one
// Complete call per Invoke and none during Dispatch.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// DispatchCalls converts the model's requested tool calls into registry
// ToolCalls, preserving order.
func DispatchCalls(calls []ModelToolCall) []ToolCall {
	out := make([]ToolCall, len(calls))
	for i, c := range calls {
		out[i] = ToolCall{ID: c.ID, ToolName: c.Name, Args: []byte(c.Arguments)}
	}
	return out
}
