package modelfn

import (
	"encoding/json"
	"maps"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
)

// resultKey is the wrapper key for non-object return values; the protocol
// requires object-shaped JSON at the top level.
const resultKey = "result"

// inputKey is the wrapper key for non-object tool arguments.
const inputKey = "input"

// Contract is a compiled typed function signature: a description, the trimmed
// input and output schemas, and the validate/unwrap step that turns a raw
// model reply back into R. Compiled once per declared function and immutable
// afterward.
type Contract[A, R any] struct {
	description    string
	input          *Extractor[A]
	outputSchema   map[string]any
	outputResolved *jsonschema.Resolved
	outputWrapped  bool
}

// resultEnvelope is the effective output shape for contracts whose return
// type is not itself an object.
type resultEnvelope[R any] struct {
	Result R `json:"result"`
}

// NewContract compiles a typed function signature into a Contract.
//
// The description must be non-empty and both A and R must be structurally
// describable; violations fail with SignatureError (wrapping
// ErrInvalidSignature) or SchemaError. When R is not an object type the
// output schema is wrapped as {"result": R} and ValidateAndUnwrap reverses
// the wrapping transparently.
func NewContract[A, R any](description string) (*Contract[A, R], error) {
	if description == "" {
		return nil, &SignatureError{Reason: "description required"}
	}
	retType := reflect.TypeOf(*new(R))
	if retType == nil {
		return nil, &SignatureError{Reason: "return type required"}
	}
	if reflect.TypeOf(*new(A)) == nil {
		return nil, &SignatureError{Reason: "argument type required"}
	}
	input, err := NewExtractor[A]()
	if err != nil {
		return nil, err
	}
	wrapped := !isObjectType(retType)
	var outSchema map[string]any
	if wrapped {
		inner, _, err := generateSchema[R]()
		if err != nil {
			return nil, err
		}
		outSchema = wrapSchema(inner, resultKey)
	} else {
		outSchema, _, err = generateSchema[R]()
		if err != nil {
			return nil, err
		}
	}
	resolved, err := compileRawSchema(outSchema)
	if err != nil {
		return nil, &SchemaError{Detail: "output schema", Err: err}
	}
	return &Contract[A, R]{
		description:    description,
		input:          input,
		outputSchema:   outSchema,
		outputResolved: resolved,
		outputWrapped:  wrapped,
	}, nil
}

// Description returns the natural-language description of the function.
func (c *Contract[A, R]) Description() string { return c.description }

// InputSchema returns a shallow copy of the trimmed argument schema.
// Nested maps are shared; callers must not mutate them.
func (c *Contract[A, R]) InputSchema() map[string]any { return c.input.Schema() }

// OutputSchema returns a shallow copy of the trimmed (possibly wrapped)
// output schema.
func (c *Contract[A, R]) OutputSchema() map[string]any { return maps.Clone(c.outputSchema) }

// OutputWrapped reports whether the output schema wraps a non-object return
// type under the "result" key.
func (c *Contract[A, R]) OutputWrapped() bool { return c.outputWrapped }

// ValidateAndUnwrap parses raw against the effective output schema and
// returns the declared R. Non-JSON input fails with MalformedResponseError;
// a structural mismatch fails with ValidationError carrying the validator's
// path detail. The wrapper key is removed transparently; callers never see
// it. Validation failures are surfaced, never coerced.
func (c *Contract[A, R]) ValidateAndUnwrap(raw []byte) (R, error) {
	var zero R
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, &MalformedResponseError{Raw: string(raw), Err: err}
	}
	if err := c.outputResolved.Validate(v); err != nil {
		return zero, &ValidationError{Detail: err.Error(), Err: ErrValidation}
	}
	if c.outputWrapped {
		var env resultEnvelope[R]
		if err := json.Unmarshal(raw, &env); err != nil {
			return zero, &ValidationError{Detail: err.Error(), Err: ErrValidation}
		}
		return env.Result, nil
	}
	var out R
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, &ValidationError{Detail: err.Error(), Err: ErrValidation}
	}
	return out, nil
}

// ParseArgs validates and decodes a JSON argument payload into A. Used by the
// tool path; Invoke serializes A in the other direction.
func (c *Contract[A, R]) ParseArgs(argsJSON []byte) (A, error) {
	return c.input.ParseAndValidate(argsJSON)
}
