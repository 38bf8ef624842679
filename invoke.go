package modelfn

import (
	"context"
	"encoding/json"
	"fmt"
)

// Runner orchestrates single contract invocations against a ChatClient.
// It holds no mutable state; one Runner may serve many contracts concurrently.
type Runner struct {
	client ChatClient
	model  string
	opts   runnerOptions
}

// NewRunner creates a Runner for the given client and model.
// The default prompt builder is used unless WithPromptBuilder overrides it.
func NewRunner(client ChatClient, model string, opts ...RunnerOption) *Runner {
	o := runnerOptions{prompt: defaultPromptBuilder{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Runner{client: client, model: model, opts: o}
}

// Invoke delegates one call of the contract to the model: it serializes arg,
// builds the system prompt from the contract's description and schemas,
// submits a single completion request in JSON-object mode (or schema mode
// under WithSchemaResponse), parses the reply, and runs the contract's
// validate/unwrap step.
//
// A non-JSON reply fails with MalformedResponseError; a structural mismatch
// fails with ValidationError. Neither is retried here; resubmission is the
// caller's decision.
func Invoke[A, R any](ctx context.Context, r *Runner, c *Contract[A, R], arg A) (R, error) {
	var zero R
	payload, err := json.Marshal(arg)
	if err != nil {
		return zero, fmt.Errorf("marshal argument: %w", err)
	}
	system := r.opts.prompt.Build(c.Description(), c.InputSchema(), c.OutputSchema())
	format := &ResponseFormat{Type: FormatJSONObject}
	if r.opts.schemaResponse {
		format = &ResponseFormat{
			Type:   FormatJSONSchema,
			Name:   "function_result",
			Schema: c.OutputSchema(),
		}
	}
	resp, err := r.client.Complete(ctx, ChatRequest{
		Model: r.model,
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: string(payload)},
		},
		ResponseFormat: format,
	})
	if err != nil {
		return zero, fmt.Errorf("completion request: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return zero, &MalformedResponseError{Err: fmt.Errorf("completion returned no choices")}
	}
	return c.ValidateAndUnwrap([]byte(resp.Choices[0].Message.Content))
}
