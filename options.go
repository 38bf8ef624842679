package modelfn

import (
	"context"
	"time"
)

// toolOptions hold optional tool settings (timeout, tags, etc.).
type toolOptions struct {
	timeout   time.Duration
	tags      []string
	version   string
	dangerous bool
}

// ToolOption configures a tool (e.g. WithTimeout, WithTags).
type ToolOption func(*toolOptions)

// WithTimeout sets a per-tool timeout (overrides the registry default for this tool).
func WithTimeout(d time.Duration) ToolOption {
	return func(o *toolOptions) {
		o.timeout = d
	}
}

// WithTags sets tool tags (metadata for discovery/orchestrator).
func WithTags(tags ...string) ToolOption {
	return func(o *toolOptions) {
		o.tags = tags
	}
}

// WithVersion sets the tool version.
func WithVersion(version string) ToolOption {
	return func(o *toolOptions) {
		o.version = version
	}
}

// WithDangerous marks the tool as dangerous (orchestrator may require confirmation).
func WithDangerous() ToolOption {
	return func(o *toolOptions) {
		o.dangerous = true
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	timeout         time.Duration
	maxConcurrency  int
	recoverPanics   bool
	isolateFailures bool
	onBefore        func(context.Context, ToolCall)
	onAfter         func(context.Context, ToolCall, error, time.Duration)
}

// WithDefaultTimeout sets the default execution timeout for tools.
func WithDefaultTimeout(d time.Duration) RegistryOption {
	return func(o *registryOptions) {
		o.timeout = d
	}
}

// WithMaxConcurrency limits concurrent tool executions (semaphore).
// Pass 0 or negative to disable the semaphore (unlimited concurrency).
func WithMaxConcurrency(n int) RegistryOption {
	return func(o *registryOptions) {
		o.maxConcurrency = n
	}
}

// WithRecoverPanics enables panic recovery in Execute (returns SystemError).
func WithRecoverPanics(enable bool) RegistryOption {
	return func(o *registryOptions) {
		o.recoverPanics = enable
	}
}

// WithIsolateFailures makes Dispatch convert each failed call into an
// error-content result instead of aborting the whole batch. The default
// (off) aborts on the first failure and discards sibling results, matching
// the strict all-or-nothing batch policy.
func WithIsolateFailures() RegistryOption {
	return func(o *registryOptions) {
		o.isolateFailures = true
	}
}

// WithOnBeforeExecute sets a hook called before each tool execution.
func WithOnBeforeExecute(fn func(context.Context, ToolCall)) RegistryOption {
	return func(o *registryOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterExecute sets a hook called after each tool execution with the
// final error (nil on success) and duration.
func WithOnAfterExecute(fn func(context.Context, ToolCall, error, time.Duration)) RegistryOption {
	return func(o *registryOptions) {
		o.onAfter = fn
	}
}

// RunnerOption configures a Runner.
type RunnerOption func(*runnerOptions)

type runnerOptions struct {
	prompt         PromptBuilder
	schemaResponse bool
}

// WithPromptBuilder substitutes the system-prompt strategy. The default
// template embeds the description and both schemas; an override may, for
// example, omit the output schema to rely purely on the provider's
// schema-constrained generation.
func WithPromptBuilder(b PromptBuilder) RunnerOption {
	return func(o *runnerOptions) {
		if b != nil {
			o.prompt = b
		}
	}
}

// WithSchemaResponse requests the provider's schema-constrained response
// mode, passing the contract's output schema in the request. Without it the
// Runner asks for plain JSON-object mode and relies on the prompt.
func WithSchemaResponse() RunnerOption {
	return func(o *runnerOptions) {
		o.schemaResponse = true
	}
}
