package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// WazeroEngine implements Engine on the wazero WebAssembly runtime.
//
// Container frames carry wasm binaries. A runtime handle owns a shared
// compilation cache; each context is a wazero runtime built from that cache,
// so compiled modules are reused across contexts while instance state stays
// isolated. Preload-only frames are compiled and registered under their
// declared module name without running their start function; entry frames
// are instantiated and started. Instantiation failures, traps and exit
// statuses become the context's pending-exception state.
type WazeroEngine struct {
	cfg WazeroConfig
}

// WazeroConfig holds configuration for engine creation.
type WazeroConfig struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB
	// each). 0 means the wazero default.
	MemoryLimitPages uint32
}

// NewWazeroEngine creates a wazero-backed engine.
func NewWazeroEngine() *WazeroEngine {
	return NewWazeroEngineWithConfig(WazeroConfig{})
}

// NewWazeroEngineWithConfig creates a wazero-backed engine with custom
// configuration.
func NewWazeroEngineWithConfig(cfg WazeroConfig) *WazeroEngine {
	return &WazeroEngine{cfg: cfg}
}

type wazeroRuntime struct {
	cache  wazero.CompilationCache
	config wazero.RuntimeConfig
	loader ModuleLoader
}

func (*wazeroRuntime) sealedRuntime() {}

type wazeroContext struct {
	rt         *wazeroRuntime
	wz         wazero.Runtime
	args       []string
	pending    error
	hasPending bool
	drainCode  int
	anonSeq    int
}

func (*wazeroContext) sealedContext() {}

func (e *WazeroEngine) NewRuntime(ctx context.Context) (RuntimeHandle, error) {
	cache := wazero.NewCompilationCache()
	cfg := wazero.NewRuntimeConfig().WithCompilationCache(cache)
	if e.cfg.MemoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(e.cfg.MemoryLimitPages)
	}
	return &wazeroRuntime{cache: cache, config: cfg}, nil
}

func (e *WazeroEngine) FreeRuntime(ctx context.Context, rt RuntimeHandle) error {
	wrt, err := wazeroRT(rt)
	if err != nil {
		return err
	}
	return wrt.cache.Close(ctx)
}

func (e *WazeroEngine) SetModuleLoader(rt RuntimeHandle, load ModuleLoader) error {
	wrt, err := wazeroRT(rt)
	if err != nil {
		return err
	}
	wrt.loader = load
	return nil
}

func (e *WazeroEngine) NewContext(ctx context.Context, rt RuntimeHandle, cfg *ContextConfig) (ContextHandle, error) {
	wrt, err := wazeroRT(rt)
	if err != nil {
		return nil, err
	}

	wz := wazero.NewRuntimeWithConfig(ctx, wrt.config)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, wz); err != nil {
		_ = wz.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	c := &wazeroContext{rt: wrt, wz: wz}
	if cfg != nil {
		c.args = cfg.Args
	}
	return c, nil
}

func (e *WazeroEngine) FreeContext(ctx context.Context, c ContextHandle) error {
	wc, err := wazeroCtx(c)
	if err != nil {
		return err
	}
	return wc.wz.Close(ctx)
}

func (e *WazeroEngine) EvalBinary(ctx context.Context, c ContextHandle, code []byte, preloadOnly bool) bool {
	wc, err := wazeroCtx(c)
	if err != nil {
		return false
	}

	compiled, err := wc.wz.CompileModule(ctx, code)
	if err != nil {
		wc.fail(fmt.Errorf("compile module: %w", err))
		return false
	}

	if err := wc.resolveImports(ctx, compiled, 0); err != nil {
		wc.fail(err)
		return false
	}

	mcfg := wazero.NewModuleConfig().
		WithName(wc.moduleName(compiled.Name())).
		WithStdout(os.Stdout).
		WithStderr(os.Stderr)
	if len(wc.args) > 0 {
		mcfg = mcfg.WithArgs(wc.args...)
	}
	if preloadOnly {
		// Registration only, matching the preload contract: exports become
		// importable but the start function does not run.
		mcfg = mcfg.WithStartFunctions()
	}

	if _, err := wc.wz.InstantiateModule(ctx, compiled, mcfg); err != nil {
		var exit *sys.ExitError
		if stderrors.As(err, &exit) {
			if exit.ExitCode() == 0 {
				return true
			}
			wc.drainCode = int(exit.ExitCode())
		}
		wc.fail(err)
		return false
	}

	debugf("wazero: instantiated %q (preload=%v)", compiled.Name(), preloadOnly)
	return true
}

// resolveImports consults the runtime's module loader for imported module
// names not yet resident in this context, registering them recursively.
func (wc *wazeroContext) resolveImports(ctx context.Context, compiled wazero.CompiledModule, depth int) error {
	const maxDepth = 16
	if depth > maxDepth {
		return fmt.Errorf("module import chain deeper than %d", maxDepth)
	}
	if wc.rt.loader == nil {
		return nil
	}

	seen := map[string]bool{}
	for _, def := range compiled.ImportedFunctions() {
		mod, _, ok := def.Import()
		if !ok || mod == "" || seen[mod] {
			continue
		}
		seen[mod] = true
		if mod == "wasi_snapshot_preview1" || wc.wz.Module(mod) != nil {
			continue
		}

		data, err := wc.rt.loader(mod)
		if err != nil {
			return fmt.Errorf("resolve module %q: %w", mod, err)
		}
		dep, err := wc.wz.CompileModule(ctx, data)
		if err != nil {
			return fmt.Errorf("compile module %q: %w", mod, err)
		}
		if err := wc.resolveImports(ctx, dep, depth+1); err != nil {
			return err
		}
		cfg := wazero.NewModuleConfig().WithName(mod).WithStartFunctions()
		if _, err := wc.wz.InstantiateModule(ctx, dep, cfg); err != nil {
			return fmt.Errorf("register module %q: %w", mod, err)
		}
	}
	return nil
}

// moduleName keeps instantiation names unique within the context.
func (wc *wazeroContext) moduleName(declared string) string {
	if declared == "" || wc.wz.Module(declared) == nil {
		return declared
	}
	wc.anonSeq++
	return fmt.Sprintf("%s.%d", declared, wc.anonSeq)
}

func (e *WazeroEngine) EvalSource(ctx context.Context, c ContextHandle, name string, src []byte) (Value, bool) {
	wc, err := wazeroCtx(c)
	if err != nil {
		return nil, false
	}
	wc.fail(fmt.Errorf("source evaluation of %q: the wasm engine runs binary modules only", name))
	return nil, false
}

func (e *WazeroEngine) DeferredState(c ContextHandle, v Value) DeferredState {
	return NotDeferred
}

func (e *WazeroEngine) DeferredResult(c ContextHandle, v Value) Value {
	return nil
}

func (e *WazeroEngine) Throw(c ContextHandle, v Value) {
	wc, err := wazeroCtx(c)
	if err != nil {
		return
	}
	if verr, ok := v.(error); ok {
		wc.fail(verr)
		return
	}
	wc.fail(fmt.Errorf("%v", v))
}

func (e *WazeroEngine) HasException(c ContextHandle) bool {
	wc, err := wazeroCtx(c)
	return err == nil && wc.hasPending
}

func (e *WazeroEngine) TakeException(c ContextHandle) Value {
	wc, err := wazeroCtx(c)
	if err != nil || !wc.hasPending {
		return nil
	}
	v := wc.pending
	wc.pending = nil
	wc.hasPending = false
	return v
}

func (e *WazeroEngine) ValueString(c ContextHandle, v Value) string {
	if verr, ok := v.(error); ok {
		return verr.Error()
	}
	return fmt.Sprint(v)
}

func (e *WazeroEngine) IsErrorValue(c ContextHandle, v Value) bool {
	verr, ok := v.(error)
	if !ok {
		return false
	}
	var exit *sys.ExitError
	if stderrors.As(verr, &exit) {
		return true
	}
	return strings.Contains(verr.Error(), "wasm stack trace")
}

func (e *WazeroEngine) ErrorField(c ContextHandle, v Value, name string) string {
	verr, ok := v.(error)
	if !ok {
		return ""
	}

	var exit *sys.ExitError
	if stderrors.As(verr, &exit) {
		switch name {
		case "name":
			return "ExitError"
		case "message":
			return fmt.Sprintf("module exited with code %d", exit.ExitCode())
		}
		return ""
	}

	msg, stack, traced := strings.Cut(verr.Error(), "wasm stack trace:")
	switch name {
	case "name":
		return "RuntimeError"
	case "message":
		return strings.TrimSpace(msg)
	case "stack":
		if traced {
			return strings.TrimSpace(stack)
		}
	}
	return ""
}

func (e *WazeroEngine) Drain(ctx context.Context, c ContextHandle) int {
	wc, err := wazeroCtx(c)
	if err != nil {
		return 1
	}
	// wazero has no deferred task queue; the drain result is the recorded
	// exit status of the executed modules.
	code := wc.drainCode
	wc.drainCode = 0
	return code
}

func (wc *wazeroContext) fail(err error) {
	wc.pending = err
	wc.hasPending = true
}

func wazeroRT(rt RuntimeHandle) (*wazeroRuntime, error) {
	wrt, ok := rt.(*wazeroRuntime)
	if !ok {
		return nil, fmt.Errorf("handle belongs to a different engine: %T", rt)
	}
	return wrt, nil
}

func wazeroCtx(c ContextHandle) (*wazeroContext, error) {
	wc, ok := c.(*wazeroContext)
	if !ok {
		return nil, fmt.Errorf("handle belongs to a different engine: %T", c)
	}
	return wc, nil
}
