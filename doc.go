// Package modelfn bridges strongly-typed Go function contracts and a
// text-based, JSON-speaking language model.
//
// # Overview
//
// A caller declares a function by its argument type, return type, and a
// natural-language description. modelfn compiles that signature into a
// minimal JSON Schema pair and then supports both directions of the
// protocol:
//
//   - code-calls-model: Invoke builds an instructional prompt from the
//     compiled schemas, sends one completion request through a ChatClient,
//     and validates/unwraps the model's JSON reply into the declared return
//     type (Contract → Runner → Invoke).
//   - model-calls-code: a Registry of tools is rendered into the protocol's
//     tool-list format, incoming call requests are dispatched to real
//     implementations, and results come back as id-correlated tool messages
//     (NewTool → Registry → FormatTools / Dispatch).
//
// # Key concepts
//
//   - Wrapping: the wire format requires object-shaped JSON at the top
//     level, so non-object return types travel as {"result": v} and
//     non-object tool arguments as {"input": v}. The wrapper is decided once
//     at compile time and removed transparently; callers never see it.
//   - Single Source of Truth: one Go type drives both the schema shown to
//     the model and the validation of incoming JSON.
//   - Self-Correction: ClientError carries human-readable messages back to
//     the model; SystemError stays redacted.
//
// # Example
//
//	type Args struct { City string `json:"city"` }
//	type Out  struct { Temp float64 `json:"temp"` }
//	tool, err := modelfn.NewTool("weather", "Get weather", func(_ context.Context, a Args) (Out, error) {
//	    return Out{Temp: 22.5}, nil
//	})
//	if err != nil { ... }
//	reg := modelfn.NewRegistry()
//	reg.Register(tool)
//	results, err := reg.Dispatch(ctx, []modelfn.ToolCall{{ID: "1", ToolName: "weather", Args: []byte(`{"city":"Oslo"}`)}})
package modelfn
