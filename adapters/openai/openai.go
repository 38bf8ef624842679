// Package openaichat implements modelfn.ChatClient over the OpenAI
// chat-completions SDK. Transport, auth, and retries stay inside the SDK
// client the caller constructs.
package openaichat

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/skosovsky/modelfn"
)

// Client adapts an openai.Client to the modelfn.ChatClient boundary.
type Client struct {
	api openai.Client
}

// New wraps an already-configured SDK client (API key, base URL, retry
// policy are its concern).
func New(api openai.Client) *Client {
	return &Client{api: api}
}

// Complete translates the provider-agnostic request into SDK params, issues
// one chat completion, and maps the reply back.
func (c *Client) Complete(ctx context.Context, req modelfn.ChatRequest) (*modelfn.ChatResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case modelfn.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case modelfn.RoleUser:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		case modelfn.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		case modelfn.RoleTool:
			params.Messages = append(params.Messages, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			return nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}
	if rf := req.ResponseFormat; rf != nil {
		switch rf.Type {
		case modelfn.FormatJSONSchema:
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
					JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
						Name:   rf.Name,
						Schema: rf.Schema,
						Strict: openai.Bool(true),
					},
				},
			}
		case modelfn.FormatJSONObject:
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			}
		default:
			return nil, fmt.Errorf("unsupported response format %q", rf.Type)
		}
	}
	for _, t := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Function.Name,
				Description: openai.String(t.Function.Description),
				Parameters:  shared.FunctionParameters(t.Function.Parameters),
			},
		})
	}
	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	out := &modelfn.ChatResponse{}
	for _, ch := range completion.Choices {
		msg := modelfn.AssistantMessage{Content: ch.Message.Content}
		for _, tc := range ch.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, modelfn.ModelToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		out.Choices = append(out.Choices, modelfn.Choice{Message: msg})
	}
	return out, nil
}

var _ modelfn.ChatClient = (*Client)(nil)
