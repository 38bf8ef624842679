package modelfn

import (
	"context"
	"encoding/json"
	"fmt"
)

// NewDynamicTool creates a Tool from a raw JSON Schema map and a function
// that receives validated raw JSON and returns the content string. Useful
// for runtime API integration (e.g. OpenAPI/Swagger) where no Go argument
// type exists. Schema validation only; the handler sees the raw payload.
// schemaMap and fn must be non-nil. The provided schemaMap is not mutated;
// it is trimmed to the wire shape on a deep copy.
func NewDynamicTool(
	name, description string,
	schemaMap map[string]any,
	fn func(ctx context.Context, argsJSON []byte) (string, error),
	opts ...ToolOption,
) (Tool, error) {
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	if description == "" {
		return nil, &SignatureError{Reason: "description required"}
	}
	if schemaMap == nil {
		return nil, fmt.Errorf("dynamic schema map must not be nil")
	}
	if fn == nil {
		return nil, fmt.Errorf("dynamic tool handler must not be nil")
	}
	// Deep copy before trimming so the caller's map is never mutated.
	data, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("failed to deep copy schema map: %w", err)
	}
	var schemaCopy map[string]any
	if err := json.Unmarshal(data, &schemaCopy); err != nil {
		return nil, fmt.Errorf("failed to deep copy schema map: %w", err)
	}
	inlineLocalRefs(schemaCopy, schemaCopy)
	trimmed, err := trimSchema(schemaCopy)
	if err != nil {
		return nil, err
	}
	compiled, err := compileRawSchema(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to compile dynamic schema: %w", err)
	}
	call := func(ctx context.Context, argsJSON []byte) (string, error) {
		var v any
		if err := json.Unmarshal(argsJSON, &v); err != nil {
			return "", wrapJSONParseError(err)
		}
		if err := validateAgainstSchema(compiled, v); err != nil {
			return "", err
		}
		res, err := fn(ctx, argsJSON)
		if err != nil {
			return "", wrapHandlerError(err)
		}
		return res, nil
	}
	return &tool{
		name:        name,
		description: description,
		schema:      trimmed,
		call:        call,
		opts:        o,
	}, nil
}
