package engine

import (
	"context"
	"fmt"

	"github.com/dop251/goja"
)

// GojaEngine implements Engine on the goja JavaScript interpreter.
//
// Container frames and loader results carry JavaScript text; each frame is
// compiled with goja.Compile before evaluation, which is the engine's
// precompiled unit. Promises returned from source evaluation are the
// deferred results of the capability surface.
type GojaEngine struct{}

// NewGojaEngine creates a goja-backed engine.
func NewGojaEngine() *GojaEngine {
	return &GojaEngine{}
}

type gojaRuntime struct {
	loader ModuleLoader
}

func (*gojaRuntime) sealedRuntime() {}

type gojaContext struct {
	vm         *goja.Runtime
	rt         *gojaRuntime
	errorCtor  *goja.Object
	pending    goja.Value
	hasPending bool
	tasks      []goja.Callable
}

func (*gojaContext) sealedContext() {}

func (e *GojaEngine) NewRuntime(ctx context.Context) (RuntimeHandle, error) {
	return &gojaRuntime{}, nil
}

func (e *GojaEngine) FreeRuntime(ctx context.Context, rt RuntimeHandle) error {
	return nil
}

func (e *GojaEngine) SetModuleLoader(rt RuntimeHandle, load ModuleLoader) error {
	grt, err := gojaRT(rt)
	if err != nil {
		return err
	}
	grt.loader = load
	return nil
}

func (e *GojaEngine) NewContext(ctx context.Context, rt RuntimeHandle, cfg *ContextConfig) (ContextHandle, error) {
	grt, err := gojaRT(rt)
	if err != nil {
		return nil, err
	}

	vm := goja.New()
	c := &gojaContext{vm: vm, rt: grt}

	if ctor, ok := vm.Get("Error").(*goja.Object); ok {
		c.errorCtor = ctor
	}

	// setTimeout feeds the drain queue; the delay is ignored, tasks run in
	// scheduling order during Drain.
	err = vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		if fn, ok := goja.AssertFunction(call.Argument(0)); ok {
			c.tasks = append(c.tasks, fn)
		}
		return goja.Undefined()
	})
	if err != nil {
		return nil, err
	}

	// loadModule bridges the runtime's module-resolution loader into script
	// code: it resolves, compiles and evaluates the named module.
	err = vm.Set("loadModule", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		if grt.loader == nil {
			panic(vm.NewTypeError("no module loader installed"))
		}
		src, lerr := grt.loader(name)
		if lerr != nil {
			panic(vm.NewGoError(lerr))
		}
		prog, cerr := goja.Compile(name, string(src), false)
		if cerr != nil {
			panic(vm.NewGoError(cerr))
		}
		v, rerr := vm.RunProgram(prog)
		if rerr != nil {
			if ex, ok := rerr.(*goja.Exception); ok {
				panic(ex.Value())
			}
			panic(vm.NewGoError(rerr))
		}
		return v
	})
	if err != nil {
		return nil, err
	}

	if cfg != nil && len(cfg.Args) > 0 {
		if err := vm.Set("scriptArgs", cfg.Args); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (e *GojaEngine) FreeContext(ctx context.Context, c ContextHandle) error {
	gc, err := gojaCtx(c)
	if err != nil {
		return err
	}
	gc.pending = nil
	gc.hasPending = false
	gc.tasks = nil
	return nil
}

func (e *GojaEngine) EvalBinary(ctx context.Context, c ContextHandle, code []byte, preloadOnly bool) bool {
	gc, err := gojaCtx(c)
	if err != nil {
		return false
	}
	name := "<module>"
	if preloadOnly {
		name = "<preload>"
	}
	_, ok := gc.run(name, code)
	return ok
}

func (e *GojaEngine) EvalSource(ctx context.Context, c ContextHandle, name string, src []byte) (Value, bool) {
	gc, err := gojaCtx(c)
	if err != nil {
		return nil, false
	}
	v, ok := gc.run(name, src)
	if !ok {
		return nil, false
	}
	if v != nil {
		if p, isPromise := v.Export().(*goja.Promise); isPromise {
			return p, true
		}
	}
	return v, true
}

// run compiles and evaluates one unit, recording any failure as the pending
// exception.
func (gc *gojaContext) run(name string, src []byte) (goja.Value, bool) {
	prog, err := goja.Compile(name, string(src), false)
	if err != nil {
		gc.throw(gc.vm.NewGoError(err))
		return nil, false
	}
	v, err := gc.vm.RunProgram(prog)
	if err != nil {
		if ex, ok := err.(*goja.Exception); ok {
			gc.throw(ex.Value())
		} else {
			gc.throw(gc.vm.NewGoError(err))
		}
		return nil, false
	}
	debugf("goja: evaluated %s", name)
	return v, true
}

func (gc *gojaContext) throw(v goja.Value) {
	gc.pending = v
	gc.hasPending = true
}

func (e *GojaEngine) DeferredState(c ContextHandle, v Value) DeferredState {
	p, ok := v.(*goja.Promise)
	if !ok {
		return NotDeferred
	}
	switch p.State() {
	case goja.PromiseStatePending:
		return DeferredPending
	case goja.PromiseStateFulfilled:
		return DeferredResolved
	case goja.PromiseStateRejected:
		return DeferredRejected
	}
	return NotDeferred
}

func (e *GojaEngine) DeferredResult(c ContextHandle, v Value) Value {
	if p, ok := v.(*goja.Promise); ok {
		return p.Result()
	}
	return nil
}

func (e *GojaEngine) Throw(c ContextHandle, v Value) {
	gc, err := gojaCtx(c)
	if err != nil {
		return
	}
	if gv, ok := v.(goja.Value); ok {
		gc.throw(gv)
		return
	}
	gc.throw(gc.vm.ToValue(v))
}

func (e *GojaEngine) HasException(c ContextHandle) bool {
	gc, err := gojaCtx(c)
	return err == nil && gc.hasPending
}

func (e *GojaEngine) TakeException(c ContextHandle) Value {
	gc, err := gojaCtx(c)
	if err != nil || !gc.hasPending {
		return nil
	}
	v := gc.pending
	gc.pending = nil
	gc.hasPending = false
	return v
}

func (e *GojaEngine) ValueString(c ContextHandle, v Value) string {
	gv, ok := v.(goja.Value)
	if !ok {
		return fmt.Sprint(v)
	}
	return gv.String()
}

func (e *GojaEngine) IsErrorValue(c ContextHandle, v Value) bool {
	gc, err := gojaCtx(c)
	if err != nil || gc.errorCtor == nil {
		return false
	}
	gv, ok := v.(goja.Value)
	if !ok {
		return false
	}
	if _, isObj := gv.(*goja.Object); !isObj {
		return false
	}
	return gc.vm.InstanceOf(gv, gc.errorCtor)
}

func (e *GojaEngine) ErrorField(c ContextHandle, v Value, name string) string {
	gc, err := gojaCtx(c)
	if err != nil {
		return ""
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		gv, isVal := v.(goja.Value)
		if !isVal {
			return ""
		}
		obj = gv.ToObject(gc.vm)
	}
	fv := obj.Get(name)
	if fv == nil || goja.IsUndefined(fv) || goja.IsNull(fv) {
		return ""
	}
	return fv.String()
}

func (e *GojaEngine) Drain(ctx context.Context, c ContextHandle) int {
	gc, err := gojaCtx(c)
	if err != nil {
		return 1
	}
	for len(gc.tasks) > 0 {
		fn := gc.tasks[0]
		gc.tasks = gc.tasks[1:]
		if _, err := fn(goja.Undefined()); err != nil {
			if ex, ok := err.(*goja.Exception); ok {
				gc.throw(ex.Value())
			} else {
				gc.throw(gc.vm.NewGoError(err))
			}
			return 1
		}
	}
	return 0
}

func gojaRT(rt RuntimeHandle) (*gojaRuntime, error) {
	grt, ok := rt.(*gojaRuntime)
	if !ok {
		return nil, fmt.Errorf("handle belongs to a different engine: %T", rt)
	}
	return grt, nil
}

func gojaCtx(c ContextHandle) (*gojaContext, error) {
	gc, ok := c.(*gojaContext)
	if !ok {
		return nil, fmt.Errorf("handle belongs to a different engine: %T", c)
	}
	return gc, nil
}
