package engine

import "context"

// Value is an opaque engine-owned value: an exception object, a deferred
// evaluation result, or a plain result. It is only meaningful to the engine
// that produced it and only while its context is alive.
type Value any

// RuntimeHandle identifies an engine runtime. The orchestrator that created
// it retains sole ownership; callbacks borrow it for the duration of the
// callback invocation only.
type RuntimeHandle interface {
	sealedRuntime()
}

// ContextHandle identifies an execution context bound to a runtime. Same
// ownership rules as RuntimeHandle.
type ContextHandle interface {
	sealedContext()
}

// ModuleLoader resolves a module name requested by the engine during
// execution to its raw bytes.
type ModuleLoader func(name string) ([]byte, error)

// ContextConfig carries per-context options.
type ContextConfig struct {
	// Args is exposed to scripts in an engine-specific way (scriptArgs
	// global for JS, process args for wasm).
	Args []string
}

// DeferredState classifies a source-evaluation result.
type DeferredState int

const (
	// NotDeferred means the value is an ordinary settled result.
	NotDeferred DeferredState = iota
	DeferredPending
	DeferredResolved
	DeferredRejected
)

// Engine is the narrow capability surface the orchestrator drives.
//
// Evaluation methods report success/failure as a bool; on failure the
// engine holds a pending exception on the context until TakeException
// clears it. Implementations must keep at most one pending exception per
// context, last writer wins.
type Engine interface {
	// NewRuntime allocates a runtime handle.
	NewRuntime(ctx context.Context) (RuntimeHandle, error)
	// FreeRuntime releases a runtime handle and everything it owns.
	FreeRuntime(ctx context.Context, rt RuntimeHandle) error

	// SetModuleLoader installs the module-resolution callback on the
	// runtime. Contexts created afterwards consult it; how and when is
	// engine-defined.
	SetModuleLoader(rt RuntimeHandle, load ModuleLoader) error

	// NewContext allocates an execution context bound to rt. cfg may be nil.
	NewContext(ctx context.Context, rt RuntimeHandle, cfg *ContextConfig) (ContextHandle, error)
	// FreeContext releases a context handle.
	FreeContext(ctx context.Context, c ContextHandle) error

	// EvalBinary evaluates one precompiled module buffer against c.
	// preloadOnly marks dependency registration as opposed to entry
	// execution. Returns false if the evaluation failed, leaving a pending
	// exception on c.
	EvalBinary(ctx context.Context, c ContextHandle, code []byte, preloadOnly bool) bool

	// EvalSource evaluates source text as a module against c. On success it
	// returns the evaluation result, which may be a deferred value (see
	// DeferredState). Returns ok=false if evaluation raised synchronously,
	// leaving a pending exception on c.
	EvalSource(ctx context.Context, c ContextHandle, name string, src []byte) (Value, bool)

	// DeferredState classifies v. NotDeferred for ordinary values.
	DeferredState(c ContextHandle, v Value) DeferredState
	// DeferredResult returns the settled outcome of a deferred value.
	DeferredResult(c ContextHandle, v Value) Value

	// Throw installs v as the pending exception on c.
	Throw(c ContextHandle, v Value)
	// HasException reports whether c has a pending exception.
	HasException(c ContextHandle) bool
	// TakeException returns the pending exception and clears it. The engine
	// must not retain the exception after this call.
	TakeException(c ContextHandle) Value

	// ValueString converts v to a diagnostic string.
	ValueString(c ContextHandle, v Value) string
	// IsErrorValue reports whether the engine classifies v as Error-like.
	IsErrorValue(c ContextHandle, v Value) bool
	// ErrorField reads the named property (name, message, stack) of an
	// Error-like value, returning "" for absent fields.
	ErrorField(c ContextHandle, v Value, name string) string

	// Drain runs the engine's pending-task queue to quiescence and returns
	// a completion code; 0 conventionally signals a clean drain. Blocking:
	// returns only once pending work is exhausted or an engine-level limit
	// is hit.
	Drain(ctx context.Context, c ContextHandle) int
}
