package modelfn

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	customTypesMu sync.RWMutex
	customTypes   = make(map[reflect.Type]*jsonschema.Schema)
)

// RegisterType registers a custom Go type to be mapped to a JSON Schema type/format in generated schemas.
// emptyInstance is a value of the type to register (e.g. uuid.UUID{}); it must not be nil.
// jsonType is the JSON Schema type (e.g. "string", "number"); it must not be empty.
// format is optional (e.g. "uuid", "decimal"). Registration is by reflect.TypeOf(emptyInstance).
// Pointer fields (*T) use the same mapping as T; call RegisterType once for the value type.
// Call RegisterType at application startup before the first NewContract or NewTool.
func RegisterType(emptyInstance any, jsonType, format string) {
	if emptyInstance == nil {
		panic("modelfn: RegisterType emptyInstance must not be nil")
	}
	if jsonType == "" {
		panic("modelfn: RegisterType jsonType must not be empty")
	}
	t := reflect.TypeOf(emptyInstance)
	s := &jsonschema.Schema{Type: jsonType, Format: format}
	customTypesMu.Lock()
	defer customTypesMu.Unlock()
	customTypes[t] = s
}

// buildTypeSchemas returns a copy of registered type schemas for use in ForOptions.
// Safe for concurrent use with RegisterType.
func buildTypeSchemas() map[reflect.Type]*jsonschema.Schema {
	customTypesMu.RLock()
	defer customTypesMu.RUnlock()
	out := make(map[reflect.Type]*jsonschema.Schema, len(customTypes))
	for t, s := range customTypes {
		if s != nil {
			out[t] = s.CloneSchemas()
		}
	}
	return out
}

// generateSchema produces the trimmed JSON Schema map and a resolved validator
// for type T. It is called once when building a contract or tool. The raw
// generator output is reduced to the minimal wire shape before anything else
// sees it, so generator metadata never leaks into prompts or tool lists.
func generateSchema[T any]() (map[string]any, *jsonschema.Resolved, error) {
	raw, err := rawSchemaFor(reflect.TypeOf(*new(T)))
	if err != nil {
		return nil, nil, err
	}
	trimmed, err := trimSchema(raw)
	if err != nil {
		return nil, nil, err
	}
	resolved, err := compileRawSchema(trimmed)
	if err != nil {
		return nil, nil, err
	}
	return trimmed, resolved, nil
}

// rawSchemaFor runs the schema generator for typ and returns the untrimmed
// document as a map with local $refs inlined.
func rawSchemaFor(typ reflect.Type) (map[string]any, error) {
	if typ == nil {
		return nil, &SchemaError{Detail: "type is not structurally known"}
	}
	opts := &jsonschema.ForOptions{TypeSchemas: buildTypeSchemas()}
	schema, err := jsonschema.ForType(typ, opts)
	if err != nil {
		return nil, &SchemaError{Detail: typ.String(), Err: err}
	}
	if schema == nil {
		return nil, &SchemaError{Detail: typ.String() + ": schema reflection returned nil"}
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, &SchemaError{Detail: typ.String(), Err: err}
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(data, &schemaMap); err != nil {
		return nil, &SchemaError{Detail: typ.String(), Err: err}
	}
	inlineLocalRefs(schemaMap, schemaMap)
	enrichSchemaFromStructTags(schemaMap, typ)
	return schemaMap, nil
}

// enrichSchemaFromStructTags adds description and enum from struct tags to root-level properties.
// typ may be a pointer; json tag (first part before comma) is used to match property keys.
func enrichSchemaFromStructTags(schemaMap map[string]any, typ reflect.Type) {
	if schemaMap == nil || typ == nil {
		return
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return
	}
	props, ok := schemaMap["properties"].(map[string]any)
	if !ok || len(props) == 0 {
		return
	}
	// Build json name -> field for root struct
	jsonToField := make(map[string]reflect.StructField)
	for i := range typ.NumField() {
		field := typ.Field(i)
		jsonTag := strings.Split(field.Tag.Get("json"), ",")[0]
		if jsonTag == "" || jsonTag == "-" {
			continue
		}
		jsonToField[jsonTag] = field
	}
	for key, val := range props {
		prop, ok := val.(map[string]any)
		if !ok {
			continue
		}
		field, ok := jsonToField[key]
		if !ok {
			continue
		}
		if desc := field.Tag.Get("description"); desc != "" {
			prop["description"] = desc
		}
		if enumStr := field.Tag.Get("enum"); enumStr != "" {
			parts := strings.Split(enumStr, ",")
			enum := make([]any, len(parts))
			for i, p := range parts {
				enum[i] = strings.TrimSpace(p)
			}
			prop["enum"] = enum
		}
	}
}

// schemaType normalizes a generator-produced type field. The generator emits
// a bare string for most Go types but a type array like ["null","array"] for
// nilable kinds (slices, maps, pointers); the wire shape carries a single
// type, so "null" entries are dropped and the one concrete type remains.
func schemaType(v any) (string, error) {
	switch t := v.(type) {
	case string:
		if t != "" {
			return t, nil
		}
	case []any:
		var concrete string
		for _, entry := range t {
			s, ok := entry.(string)
			if !ok || s == "" {
				return "", &SchemaError{Detail: fmt.Sprintf("malformed type array %v", t)}
			}
			if s == "null" {
				continue
			}
			if concrete != "" {
				return "", &SchemaError{Detail: fmt.Sprintf("ambiguous type array %v", t)}
			}
			concrete = s
		}
		if concrete != "" {
			return concrete, nil
		}
	}
	return "", &SchemaError{Detail: "schema has no type"}
}

// trimSchema reduces a generator-produced schema document to the minimal wire
// shape: type, description, properties, required, items, enum. Generator
// metadata ($schema, $defs, $id, formats, additionalProperties) is dropped.
// A node without a resolvable type means the source type could not be
// structurally described (e.g. any) and is reported as SchemaError.
func trimSchema(schemaMap map[string]any) (map[string]any, error) {
	typ, err := schemaType(schemaMap["type"])
	if err != nil {
		return nil, err
	}
	out := map[string]any{"type": typ}
	if desc, ok := schemaMap["description"].(string); ok && desc != "" {
		out["description"] = desc
	}
	if enum, ok := schemaMap["enum"].([]any); ok && len(enum) > 0 {
		out["enum"] = append([]any(nil), enum...)
	}
	switch typ {
	case "object":
		if props, ok := schemaMap["properties"].(map[string]any); ok {
			trimmedProps := make(map[string]any, len(props))
			for name, val := range props {
				prop, ok := val.(map[string]any)
				if !ok {
					return nil, &SchemaError{Detail: fmt.Sprintf("property %q is not a schema", name)}
				}
				trimmed, err := trimSchema(prop)
				if err != nil {
					return nil, &SchemaError{Detail: fmt.Sprintf("property %q: %v", name, err)}
				}
				trimmedProps[name] = trimmed
			}
			out["properties"] = trimmedProps
		}
		if req, ok := schemaMap["required"].([]any); ok && len(req) > 0 {
			out["required"] = append([]any(nil), req...)
		}
	case "array":
		if items, ok := schemaMap["items"].(map[string]any); ok {
			trimmed, err := trimSchema(items)
			if err != nil {
				return nil, &SchemaError{Detail: fmt.Sprintf("array items: %v", err)}
			}
			out["items"] = trimmed
		}
	}
	return out, nil
}

// wrapSchema wraps inner under a single required key so the top-level wire
// payload is object-shaped.
func wrapSchema(inner map[string]any, key string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{key: inner},
		"required":   []any{key},
	}
}

// inlineLocalRefs replaces {"$ref": "#/$defs/X"} nodes with a copy of the
// referenced definition so trimming sees concrete schemas. Only one level of
// local refs is resolved; cyclic types are not representable on this wire
// format and fail later with a missing type.
func inlineLocalRefs(node, root map[string]any) {
	defs, _ := root["$defs"].(map[string]any)
	if defs == nil {
		defs, _ = root["definitions"].(map[string]any)
	}
	walkSchema(node, func(n map[string]any) {
		ref, ok := n["$ref"].(string)
		if !ok || defs == nil {
			return
		}
		name, ok := strings.CutPrefix(ref, "#/$defs/")
		if !ok {
			name, ok = strings.CutPrefix(ref, "#/definitions/")
		}
		if !ok {
			return
		}
		def, ok := defs[name].(map[string]any)
		if !ok {
			return
		}
		delete(n, "$ref")
		for k, v := range def {
			if _, exists := n[k]; !exists {
				n[k] = v
			}
		}
	})
}

// walkSchema recursively visits every map node in the schema tree (including $defs and definitions).
func walkSchema(schemaMap map[string]any, visit func(map[string]any)) {
	if schemaMap == nil {
		return
	}
	visit(schemaMap)
	for _, val := range schemaMap {
		switch v := val.(type) {
		case map[string]any:
			walkSchema(v, visit)
		case []any:
			for _, item := range v {
				if m2, ok := item.(map[string]any); ok {
					walkSchema(m2, visit)
				}
			}
		}
	}
}

// compileRawSchema compiles a raw JSON Schema map into a resolved validator. The map is not mutated.
func compileRawSchema(schemaMap map[string]any) (*jsonschema.Resolved, error) {
	data, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, err
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.Resolve(nil)
}

// isObjectType reports whether typ already maps to a JSON object at the top
// level. Non-object types must be wrapped under a single key on the wire.
func isObjectType(typ reflect.Type) bool {
	if typ == nil {
		return false
	}
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	switch typ.Kind() {
	case reflect.Struct, reflect.Map:
		return true
	default:
		return false
	}
}
