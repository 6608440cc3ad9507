package runtime

import (
	"context"
	"fmt"

	"github.com/wippyai/script-runtime/engine"
)

// fakeException stands in for an engine-native exception value.
type fakeException struct {
	name      string
	message   string
	stack     string
	errorLike bool
}

type fakeRT struct {
	engine.RuntimeHandle
	loader engine.ModuleLoader
	freed  bool
}

type fakeCtx struct {
	engine.ContextHandle
	args       []string
	pending    engine.Value
	hasPending bool
	freed      bool
}

type evalCall struct {
	tag     string
	preload bool
}

// fakeEngine is a scriptable engine double. Eval targets are identified by
// the string form of their code bytes; names in fail trigger a pending
// exception from exc.
type fakeEngine struct {
	failRuntime bool
	failContext bool

	fail map[string]fakeException

	sourceOK  bool
	sourceVal engine.Value

	deferred       engine.DeferredState
	deferredResult engine.Value

	drainCode int
	drainExc  *fakeException

	calls  []evalCall
	events []string
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{fail: map[string]fakeException{}, sourceOK: true}
}

func (f *fakeEngine) NewRuntime(ctx context.Context) (engine.RuntimeHandle, error) {
	if f.failRuntime {
		return nil, fmt.Errorf("fake runtime refused")
	}
	f.events = append(f.events, "new_runtime")
	return &fakeRT{}, nil
}

func (f *fakeEngine) FreeRuntime(ctx context.Context, rt engine.RuntimeHandle) error {
	rt.(*fakeRT).freed = true
	f.events = append(f.events, "free_runtime")
	return nil
}

func (f *fakeEngine) SetModuleLoader(rt engine.RuntimeHandle, load engine.ModuleLoader) error {
	rt.(*fakeRT).loader = load
	return nil
}

func (f *fakeEngine) NewContext(ctx context.Context, rt engine.RuntimeHandle, cfg *engine.ContextConfig) (engine.ContextHandle, error) {
	if f.failContext {
		return nil, fmt.Errorf("fake context refused")
	}
	f.events = append(f.events, "new_context")
	c := &fakeCtx{}
	if cfg != nil {
		c.args = cfg.Args
	}
	return c, nil
}

func (f *fakeEngine) FreeContext(ctx context.Context, c engine.ContextHandle) error {
	c.(*fakeCtx).freed = true
	f.events = append(f.events, "free_context")
	return nil
}

func (f *fakeEngine) EvalBinary(ctx context.Context, c engine.ContextHandle, code []byte, preloadOnly bool) bool {
	fc := c.(*fakeCtx)
	tag := string(code)
	f.calls = append(f.calls, evalCall{tag: tag, preload: preloadOnly})
	if exc, ok := f.fail[tag]; ok {
		fc.pending = exc
		fc.hasPending = true
		return false
	}
	return true
}

func (f *fakeEngine) EvalSource(ctx context.Context, c engine.ContextHandle, name string, src []byte) (engine.Value, bool) {
	fc := c.(*fakeCtx)
	f.calls = append(f.calls, evalCall{tag: name})
	if exc, ok := f.fail[name]; ok {
		fc.pending = exc
		fc.hasPending = true
		return nil, false
	}
	return f.sourceVal, f.sourceOK
}

func (f *fakeEngine) DeferredState(c engine.ContextHandle, v engine.Value) engine.DeferredState {
	return f.deferred
}

func (f *fakeEngine) DeferredResult(c engine.ContextHandle, v engine.Value) engine.Value {
	return f.deferredResult
}

func (f *fakeEngine) Throw(c engine.ContextHandle, v engine.Value) {
	fc := c.(*fakeCtx)
	fc.pending = v
	fc.hasPending = true
}

func (f *fakeEngine) HasException(c engine.ContextHandle) bool {
	return c.(*fakeCtx).hasPending
}

func (f *fakeEngine) TakeException(c engine.ContextHandle) engine.Value {
	fc := c.(*fakeCtx)
	v := fc.pending
	fc.pending = nil
	fc.hasPending = false
	return v
}

func (f *fakeEngine) ValueString(c engine.ContextHandle, v engine.Value) string {
	if exc, ok := v.(fakeException); ok {
		return exc.message
	}
	return fmt.Sprint(v)
}

func (f *fakeEngine) IsErrorValue(c engine.ContextHandle, v engine.Value) bool {
	exc, ok := v.(fakeException)
	return ok && exc.errorLike
}

func (f *fakeEngine) ErrorField(c engine.ContextHandle, v engine.Value, name string) string {
	exc, ok := v.(fakeException)
	if !ok {
		return ""
	}
	switch name {
	case "name":
		return exc.name
	case "message":
		return exc.message
	case "stack":
		return exc.stack
	}
	return ""
}

func (f *fakeEngine) Drain(ctx context.Context, c engine.ContextHandle) int {
	if f.drainExc != nil {
		fc := c.(*fakeCtx)
		fc.pending = *f.drainExc
		fc.hasPending = true
	}
	return f.drainCode
}
