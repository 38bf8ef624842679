package modelfn

import (
	"encoding/json"
	"fmt"
)

// PromptBuilder renders the system instruction for one contract invocation.
// Implementations must be pure; the Runner calls Build once per Invoke.
// Substitute an alternate builder (e.g. one that omits the output schema) via
// WithPromptBuilder to experiment with provider-side schema constraints.
type PromptBuilder interface {
	Build(description string, inputSchema, outputSchema map[string]any) string
}

// PromptBuilderFunc adapts a plain function to PromptBuilder.
type PromptBuilderFunc func(description string, inputSchema, outputSchema map[string]any) string

// Build calls f.
func (f PromptBuilderFunc) Build(description string, inputSchema, outputSchema map[string]any) string {
	return f(description, inputSchema, outputSchema)
}

// defaultPromptBuilder is the fallback template when no override is supplied.
type defaultPromptBuilder struct{}

func (defaultPromptBuilder) Build(description string, inputSchema, outputSchema map[string]any) string {
	return fmt.Sprintf(`You are implementing the following function:

%s

The user message is a JSON value matching this input schema:
%s

Respond with a single JSON object matching this output schema:
%s

Respond with JSON only. No prose, no code fences, no explanation.`,
		description, prettyJSON(inputSchema), prettyJSON(outputSchema))
}

// prettyJSON renders v indented for embedding in a prompt. Schema maps built
// by this package always marshal; the error branch exists for overrides that
// pass arbitrary maps.
func prettyJSON(v map[string]any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
