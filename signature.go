package modelfn

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// funcSignature is the checked shape of a reflectively declared function.
type funcSignature struct {
	fn      reflect.Value
	takeCtx bool
	argType reflect.Type // nil for zero-argument functions
	retErr  bool
}

// checkSignature validates fn against the declared-function rules: an
// optional leading context.Context, zero or one argument, one return value
// with an optional trailing error. Each violation is a distinct
// SignatureError.
func checkSignature(fn any) (*funcSignature, error) {
	if fn == nil {
		return nil, &SignatureError{Reason: "function required"}
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, &SignatureError{Reason: "not a function"}
	}
	sig := &funcSignature{fn: v}
	in := 0
	if t.NumIn() > 0 && t.In(0) == ctxType {
		sig.takeCtx = true
		in = 1
	}
	switch t.NumIn() - in {
	case 0:
	case 1:
		sig.argType = t.In(in)
	default:
		return nil, &SignatureError{Reason: "single argument required"}
	}
	switch t.NumOut() {
	case 1:
		if t.Out(0) == errType {
			return nil, &SignatureError{Reason: "return type required"}
		}
	case 2:
		if t.Out(1) != errType {
			return nil, &SignatureError{Reason: "second return value must be error"}
		}
		sig.retErr = true
	default:
		return nil, &SignatureError{Reason: "return type required"}
	}
	if k := t.Out(0).Kind(); k == reflect.Interface {
		return nil, &SignatureError{Reason: "return type required"}
	}
	return sig, nil
}

// NewToolFromFunc builds a Tool from an arbitrary function value, checking
// the signature at runtime instead of in the type system. fn may take an
// optional leading context.Context and zero or one argument, and must return
// a value with an optional trailing error. More than one argument fails with
// SignatureError("single argument required").
//
// Prefer NewTool / NewTool0 when the types are known at compile time; this
// path exists for tools assembled from values discovered at runtime.
func NewToolFromFunc(name, description string, fn any, opts ...ToolOption) (Tool, error) {
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	if description == "" {
		return nil, &SignatureError{Reason: "description required"}
	}
	sig, err := checkSignature(fn)
	if err != nil {
		return nil, err
	}
	var schema map[string]any
	var resolved *jsonschema.Resolved
	wrapped := false
	if sig.argType != nil {
		inner, err := rawSchemaFor(sig.argType)
		if err != nil {
			return nil, err
		}
		schema, err = trimSchema(inner)
		if err != nil {
			return nil, err
		}
		wrapped = !isObjectType(sig.argType)
		if wrapped {
			schema = wrapSchema(schema, inputKey)
		}
		resolved, err = compileRawSchema(schema)
		if err != nil {
			return nil, &SchemaError{Detail: "argument schema", Err: err}
		}
	}
	rawResult, err := rawSchemaFor(sig.fn.Type().Out(0))
	if err != nil {
		return nil, err
	}
	resultSchema, err := trimSchema(rawResult)
	if err != nil {
		return nil, err
	}
	if !isObjectType(sig.fn.Type().Out(0)) {
		resultSchema = wrapSchema(resultSchema, resultKey)
	}
	call := func(ctx context.Context, argsJSON []byte) (string, error) {
		var in []reflect.Value
		if sig.takeCtx {
			in = append(in, reflect.ValueOf(ctx))
		}
		if sig.argType != nil {
			argVal, err := decodeReflectArg(sig.argType, resolved, wrapped, argsJSON)
			if err != nil {
				return "", err
			}
			in = append(in, argVal)
		}
		out := sig.fn.Call(in)
		if sig.retErr {
			if errVal := out[1]; !errVal.IsNil() {
				return "", wrapHandlerError(errVal.Interface().(error))
			}
		}
		return stringifyResult(out[0].Interface())
	}
	return &tool{
		name:         name,
		description:  description,
		schema:       schema,
		resultSchema: resultSchema,
		call:         call,
		opts:         o,
	}, nil
}

// decodeReflectArg validates argsJSON and decodes it into a value of argType,
// removing the {"input": ...} wrapper when wrapped.
func decodeReflectArg(argType reflect.Type, resolved *jsonschema.Resolved, wrapped bool, argsJSON []byte) (reflect.Value, error) {
	var v any
	if err := json.Unmarshal(argsJSON, &v); err != nil {
		return reflect.Value{}, wrapJSONParseError(err)
	}
	if err := validateAgainstSchema(resolved, v); err != nil {
		return reflect.Value{}, err
	}
	payload := argsJSON
	if wrapped {
		var env struct {
			Input json.RawMessage `json:"input"`
		}
		if err := json.Unmarshal(argsJSON, &env); err != nil {
			return reflect.Value{}, wrapJSONParseError(err)
		}
		payload = env.Input
	}
	ptr := reflect.New(argType)
	if err := json.Unmarshal(payload, ptr.Interface()); err != nil {
		return reflect.Value{}, wrapJSONParseError(err)
	}
	if err := validateCustom(ptr.Interface()); err != nil {
		if IsClientError(err) {
			return reflect.Value{}, err
		}
		return reflect.Value{}, &ClientError{Reason: err.Error(), Err: ErrValidation}
	}
	return ptr.Elem(), nil
}
