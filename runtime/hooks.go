package runtime

import "github.com/wippyai/script-runtime/engine"

// Hooks holds the user-supplied lifecycle and error callbacks. Every slot is
// optional; a nil slot is a no-op. Each slot holds at most one handler.
//
// Handle arguments are borrowed: they are valid only for the duration of the
// callback invocation and must not be retained. Hooks run on the goroutine
// driving the Executor.
type Hooks struct {
	// OnError receives host-level error reports: runtime/context creation
	// failures and the no-entry-module warning.
	OnError func(message string)
	// OnScriptError receives structured engine exceptions from entry
	// execution and the drain. It may fire once per failing module.
	OnScriptError func(name, message, stack string)
	// OnRuntimeCreated fires after the engine runtime is allocated.
	OnRuntimeCreated func(rt engine.RuntimeHandle)
	// OnContextCreated fires after the context exists and every
	// preload-only record has been evaluated into it.
	OnContextCreated func(rt engine.RuntimeHandle, c engine.ContextHandle)
	// OnExecutionComplete fires exactly once, after the drain, regardless
	// of the drain code.
	OnExecutionComplete func()
	// OnBeforeRelease fires before handles are released; the handles are
	// still valid (either may be nil if its creation never happened).
	OnBeforeRelease func(rt engine.RuntimeHandle, c engine.ContextHandle)
}

// hook phases that fire at most once per Executor instance. Error hooks are
// repeatable and not tracked here.
type hookPhase int

const (
	phaseRuntimeCreated hookPhase = iota
	phaseContextCreated
	phaseExecutionComplete
	phaseBeforeRelease
	phaseCount
)

// callbackRegistry dispatches hooks at the correct phase, enforcing the
// at-most-once contract for the lifecycle slots.
type callbackRegistry struct {
	hooks Hooks
	fired [phaseCount]bool
}

func newCallbackRegistry(hooks Hooks) *callbackRegistry {
	return &callbackRegistry{hooks: hooks}
}

func (r *callbackRegistry) once(p hookPhase) bool {
	if r.fired[p] {
		return false
	}
	r.fired[p] = true
	return true
}

func (r *callbackRegistry) runtimeCreated(rt engine.RuntimeHandle) {
	if r.once(phaseRuntimeCreated) && r.hooks.OnRuntimeCreated != nil {
		r.hooks.OnRuntimeCreated(rt)
	}
}

func (r *callbackRegistry) contextCreated(rt engine.RuntimeHandle, c engine.ContextHandle) {
	if r.once(phaseContextCreated) && r.hooks.OnContextCreated != nil {
		r.hooks.OnContextCreated(rt, c)
	}
}

func (r *callbackRegistry) executionComplete() {
	if r.once(phaseExecutionComplete) && r.hooks.OnExecutionComplete != nil {
		r.hooks.OnExecutionComplete()
	}
}

func (r *callbackRegistry) beforeRelease(rt engine.RuntimeHandle, c engine.ContextHandle) {
	if r.once(phaseBeforeRelease) && r.hooks.OnBeforeRelease != nil {
		r.hooks.OnBeforeRelease(rt, c)
	}
}

func (r *callbackRegistry) reportError(message string) {
	if r.hooks.OnError != nil {
		r.hooks.OnError(message)
	}
}

func (r *callbackRegistry) reportScriptError(info *ExceptionInfo) {
	if r.hooks.OnScriptError != nil {
		r.hooks.OnScriptError(info.Name, info.Message, info.Stack)
	}
}
