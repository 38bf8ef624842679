package modelfn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Registry holds tools and dispatches model-requested calls to them with
// timeout, semaphore, and optional panic recovery. Registries are immutable
// from the model's point of view: registration happens at setup time, calls
// are stateless transformations afterwards.
type Registry struct {
	tools       map[string]Tool // wrapped with middlewares, used by Execute
	rawTools    map[string]Tool // unwrapped, used by Use() to re-apply middlewares from scratch
	sem         chan struct{}
	opts        registryOptions
	done        chan struct{}
	running     sync.WaitGroup
	mu          sync.Mutex
	middlewares []Middleware
}

// NewRegistry creates a Registry with the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{
		timeout:        5 * time.Second,
		maxConcurrency: 10,
		recoverPanics:  true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	var sem chan struct{}
	if o.maxConcurrency > 0 {
		sem = make(chan struct{}, o.maxConcurrency)
	}
	return &Registry{
		tools:    make(map[string]Tool),
		rawTools: make(map[string]Tool),
		sem:      sem,
		opts:     o,
		done:     make(chan struct{}),
	}
}

// Register adds a tool. Stored middlewares (see Use) are applied to the tool before registration.
// If a tool with the same name already exists, it is replaced. Safe for concurrent use with Execute and other Register calls.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	r.rawTools[name] = t
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		t = r.middlewares[i](t)
	}
	r.tools[name] = t
}

// GetAllTools returns all registered tools, sorted by name for deterministic order.
func (r *Registry) GetAllTools() []Tool {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		out = append(out, r.tools[name])
	}
	return out
}

// GetTool returns the tool with the given name (after middlewares are applied), or (nil, false) if not found.
func (r *Registry) GetTool(name string) (Tool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tools[name]
	return t, ok
}

// schemaReminderPrefix is appended to tool descriptions in FormatTools so
// the model knows the shape of tool replies.
const schemaReminderPrefix = "Responses will match schema: "

// FormatTools renders every registered tool into the tool-list wire format:
// {type: "function", function: {name, description, parameters?}}. The
// description gains a schema reminder when the tool declares a result
// schema; parameters is absent for zero-argument tools. Output is sorted by
// tool name.
func (r *Registry) FormatTools() []ToolSpec {
	tools := r.GetAllTools()
	out := make([]ToolSpec, 0, len(tools))
	for _, t := range tools {
		desc := t.Description()
		if rd, ok := t.(ResultDescriber); ok {
			if rs := rd.ResultSchema(); rs != nil {
				if b, err := json.Marshal(rs); err == nil {
					desc += "\n\n" + schemaReminderPrefix + string(b)
				}
			}
		}
		out = append(out, ToolSpec{
			Type: "function",
			Function: FunctionSpec{
				Name:        t.Name(),
				Description: desc,
				Parameters:  t.Parameters(),
			},
		})
	}
	return out
}

// Execute runs one tool call and returns its serialized content.
// The after-execution hook (WithOnAfterExecute) is always invoked via defer.
func (r *Registry) Execute(ctx context.Context, call ToolCall) (content string, err error) {
	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return "", ErrShutdown
	default:
	}
	tool, ok := r.tools[call.ToolName]
	if !ok {
		r.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, call.ToolName)
	}
	r.running.Add(1)
	r.mu.Unlock()

	if err = r.acquireSemaphore(ctx); err != nil {
		r.running.Done()
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", err
	}
	defer r.releaseSemaphore()
	defer r.running.Done()

	timeout := r.opts.timeout
	if tm, ok := tool.(ToolMetadata); ok && tm.Timeout() > 0 {
		timeout = tm.Timeout()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	// Ensure the after-execution hook is always called with the final error.
	// The recover defer is registered after onAfter so it runs first on panic
	// and rewrites err before the hook observes it.
	defer func() {
		if r.opts.onAfter != nil {
			r.opts.onAfter(ctx, call, err, time.Since(start))
		}
	}()
	if r.opts.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				content = ""
				err = &SystemError{Err: &panicError{p: p}}
			}
		}()
	}

	if r.opts.onBefore != nil {
		r.opts.onBefore(ctx, call)
	}

	content, err = tool.Call(ctx, call.Args)
	return content, err
}

func (r *Registry) acquireSemaphore(ctx context.Context) error {
	if r.sem == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case r.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) releaseSemaphore() {
	if r.sem != nil {
		<-r.sem
	}
}

// Dispatch runs all calls concurrently and returns one ToolResult per call,
// in request order regardless of completion timing. Each result carries the
// originating call's id so the caller can correlate replies.
//
// Default policy: the first failed call aborts the batch — Dispatch returns
// (nil, err) and sibling results are discarded. Under WithIsolateFailures
// each failure becomes a result whose content is the client-safe error text
// and the batch succeeds.
func (r *Registry) Dispatch(ctx context.Context, calls []ToolCall) ([]ToolResult, error) {
	results := make([]ToolResult, len(calls))
	if len(calls) == 0 {
		return results, nil
	}
	errs := make([]error, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Go(func() {
			content, err := r.Execute(ctx, call)
			if err != nil {
				errs[i] = err
				content = clientSafeMessage(err)
			}
			results[i] = ToolResult{
				Role:    RoleTool,
				ID:      call.ID,
				Name:    call.ToolName,
				Content: content,
			}
		})
	}
	wg.Wait()
	if !r.opts.isolateFailures {
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}
	return results, nil
}

// Shutdown closes the registry for new calls and waits for in-flight executions or ctx to cancel.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return nil
	default:
		close(r.done)
	}
	r.mu.Unlock()
	done := make(chan struct{})
	go func() {
		r.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// panicError wraps a recovered panic value for SystemError; used by Registry and WithRecovery middleware.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
