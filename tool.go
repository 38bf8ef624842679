package modelfn

import (
	"context"
	"encoding/json"
	"maps"
	"reflect"
	"strconv"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

// tool is the internal implementation of Tool built by NewTool, NewTool0,
// NewToolFromFunc, or NewDynamicTool.
type tool struct {
	name         string
	description  string
	schema       map[string]any // nil for zero-argument tools
	resultSchema map[string]any // nil for dynamic tools
	call         func(context.Context, []byte) (string, error)
	opts         toolOptions
}

// NewTool builds a Tool from a typed function with one argument. Schema and
// validation are delegated to argDecoder[A]: when A is not an object type,
// the parameter schema wraps it as {"input": A} and Call removes the wrapper
// before fn sees the value. Results are serialized per the wire rules
// (strings untouched, numbers as decimal text, otherwise JSON).
func NewTool[A, R any](
	name, description string,
	fn func(ctx context.Context, args A) (R, error),
	opts ...ToolOption,
) (Tool, error) {
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	if description == "" {
		return nil, &SignatureError{Reason: "description required"}
	}
	dec, err := newArgDecoder[A]()
	if err != nil {
		return nil, err
	}
	resultSchema, err := resultSchemaFor[R]()
	if err != nil {
		return nil, err
	}
	call := func(ctx context.Context, argsJSON []byte) (string, error) {
		args, err := dec.decode(argsJSON)
		if err != nil {
			return "", err
		}
		res, err := fn(ctx, args)
		if err != nil {
			return "", wrapHandlerError(err)
		}
		return stringifyResult(res)
	}
	return &tool{
		name:         name,
		description:  description,
		schema:       dec.schema,
		resultSchema: resultSchema,
		call:         call,
		opts:         o,
	}, nil
}

// NewTool0 builds a zero-argument Tool. Parameters() returns nil so the
// tool-list entry omits the parameters field; incoming arguments are ignored.
func NewTool0[R any](
	name, description string,
	fn func(ctx context.Context) (R, error),
	opts ...ToolOption,
) (Tool, error) {
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	if description == "" {
		return nil, &SignatureError{Reason: "description required"}
	}
	resultSchema, err := resultSchemaFor[R]()
	if err != nil {
		return nil, err
	}
	call := func(ctx context.Context, _ []byte) (string, error) {
		res, err := fn(ctx)
		if err != nil {
			return "", wrapHandlerError(err)
		}
		return stringifyResult(res)
	}
	return &tool{
		name:         name,
		description:  description,
		resultSchema: resultSchema,
		call:         call,
		opts:         o,
	}, nil
}

func (t *tool) Name() string        { return t.name }
func (t *tool) Description() string { return t.description }

// Parameters returns a shallow copy of the argument JSON Schema (top-level
// keys only), or nil for zero-argument tools. Nested maps are shared;
// callers must not mutate them.
func (t *tool) Parameters() map[string]any {
	if t.schema == nil {
		return nil
	}
	return maps.Clone(t.schema)
}

func (t *tool) Call(ctx context.Context, argsJSON []byte) (string, error) {
	return t.call(ctx, argsJSON)
}

// ResultSchema returns a shallow copy of the trimmed (possibly wrapped)
// result schema, or nil when the tool does not declare one.
func (t *tool) ResultSchema() map[string]any {
	if t.resultSchema == nil {
		return nil
	}
	return maps.Clone(t.resultSchema)
}

func (t *tool) Timeout() time.Duration { return t.opts.timeout }
func (t *tool) Tags() []string         { return append([]string(nil), t.opts.tags...) }
func (t *tool) Version() string        { return t.opts.version }
func (t *tool) IsDangerous() bool      { return t.opts.dangerous }

// argDecoder validates and decodes a tool argument payload of type A,
// removing the single-key wrapper when A is not an object type. The wrapped
// flag is decided once at build time; decode branches on it, never on the
// runtime shape of the value.
type argDecoder[A any] struct {
	schema   map[string]any
	resolved *jsonschema.Resolved
	wrapped  bool
}

// argEnvelope is the effective argument shape for wrapped argument types.
type argEnvelope[A any] struct {
	Input A `json:"input"`
}

func newArgDecoder[A any]() (*argDecoder[A], error) {
	argType := reflect.TypeOf(*new(A))
	if argType == nil {
		return nil, &SignatureError{Reason: "argument type required"}
	}
	inner, _, err := generateSchema[A]()
	if err != nil {
		return nil, err
	}
	wrapped := !isObjectType(argType)
	schema := inner
	if wrapped {
		schema = wrapSchema(inner, inputKey)
	}
	resolved, err := compileRawSchema(schema)
	if err != nil {
		return nil, &SchemaError{Detail: "argument schema", Err: err}
	}
	return &argDecoder[A]{schema: schema, resolved: resolved, wrapped: wrapped}, nil
}

func (d *argDecoder[A]) decode(argsJSON []byte) (A, error) {
	var zero A
	var v any
	if err := json.Unmarshal(argsJSON, &v); err != nil {
		return zero, wrapJSONParseError(err)
	}
	if err := validateAgainstSchema(d.resolved, v); err != nil {
		return zero, err
	}
	var args A
	if d.wrapped {
		var env argEnvelope[A]
		if err := json.Unmarshal(argsJSON, &env); err != nil {
			return zero, wrapJSONParseError(err)
		}
		args = env.Input
	} else if err := json.Unmarshal(argsJSON, &args); err != nil {
		return zero, wrapJSONParseError(err)
	}
	if err := runCustomValidation(args); err != nil {
		if IsClientError(err) {
			return zero, err
		}
		return zero, &ClientError{Reason: err.Error(), Err: ErrValidation}
	}
	return args, nil
}

// resultSchemaFor computes the trimmed result schema of R, wrapped under
// "result" when R is not an object type (same rule as Contract output).
func resultSchemaFor[R any]() (map[string]any, error) {
	retType := reflect.TypeOf(*new(R))
	if retType == nil {
		return nil, &SignatureError{Reason: "return type required"}
	}
	inner, _, err := generateSchema[R]()
	if err != nil {
		return nil, err
	}
	if isObjectType(retType) {
		return inner, nil
	}
	return wrapSchema(inner, resultKey), nil
}

// stringifyResult serializes a tool result for the wire: strings pass
// through untouched, integer and float values render as decimal text, and
// every other value is JSON-encoded.
func stringifyResult(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		// bitSize 32 keeps float32 values at their shortest form
		// instead of exposing float64 conversion noise.
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", &SystemError{Err: err}
	}
	return string(b), nil
}

// wrapHandlerError passes through ClientError; wraps other errors as SystemError.
func wrapHandlerError(err error) error {
	if err == nil {
		return nil
	}
	if IsClientError(err) {
		return err
	}
	return &SystemError{Err: err}
}

var (
	_ Tool            = (*tool)(nil)
	_ ToolMetadata    = (*tool)(nil)
	_ ResultDescriber = (*tool)(nil)
)
