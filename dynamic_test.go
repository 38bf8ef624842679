package modelfn

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDynamicTool_ValidatesAndCalls(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{"type": "string"},
		},
		"required": []any{"city"},
	}
	tool, err := NewDynamicTool("weather", "Get weather", schema, func(_ context.Context, argsJSON []byte) (string, error) {
		var args struct {
			City string `json:"city"`
		}
		if err := json.Unmarshal(argsJSON, &args); err != nil {
			return "", err
		}
		return "sunny in " + args.City, nil
	})
	require.NoError(t, err)

	content, err := tool.Call(context.Background(), raw(`{"city": "Lisbon"}`))
	require.NoError(t, err)
	assert.Equal(t, "sunny in Lisbon", content)

	_, err = tool.Call(context.Background(), raw(`{"city": 7}`))
	require.Error(t, err)
	assert.True(t, IsClientError(err))

	_, err = tool.Call(context.Background(), raw(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewDynamicTool_TrimsProvidedSchema(t *testing.T) {
	schema := map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"q": map[string]any{"type": "string", "format": "query"},
		},
	}
	tool, err := NewDynamicTool("search", "Search", schema, func(_ context.Context, _ []byte) (string, error) {
		return "", nil
	})
	require.NoError(t, err)
	params := tool.Parameters()
	assert.NotContains(t, params, "$schema")
	props := params["properties"].(map[string]any)
	q := props["q"].(map[string]any)
	assert.NotContains(t, q, "format")
	// Caller's map is untouched.
	assert.Contains(t, schema, "$schema")
}

func TestNewDynamicTool_NilInputs(t *testing.T) {
	_, err := NewDynamicTool("x", "desc", nil, func(_ context.Context, _ []byte) (string, error) { return "", nil })
	require.Error(t, err)

	_, err = NewDynamicTool("x", "desc", map[string]any{"type": "object"}, nil)
	require.Error(t, err)
}

func TestNewDynamicTool_SchemaWithoutType(t *testing.T) {
	_, err := NewDynamicTool("x", "desc", map[string]any{"properties": map[string]any{}}, func(_ context.Context, _ []byte) (string, error) {
		return "", nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
}
