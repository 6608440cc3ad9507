package runtime

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/script-runtime/container"
	"github.com/wippyai/script-runtime/engine"
	"github.com/wippyai/script-runtime/errors"
)

// Mode selects how the entry program is obtained.
type Mode int

const (
	// ModeBinary loads a module container from EntryPath and evaluates
	// every non-preload record as precompiled code.
	ModeBinary Mode = iota
	// ModeSource reads EntryPath as source text and evaluates it as a
	// module; preload records still come from Store if one is supplied.
	ModeSource
)

// Config configures an Executor.
type Config struct {
	// Engine is the script engine to drive. Required.
	Engine engine.Engine

	// EntryPath is the container file (ModeBinary) or the entry source
	// file (ModeSource).
	EntryPath string

	// Store supplies a pre-parsed container, bypassing EntryPath loading
	// in binary mode and providing preloads in source mode.
	Store *container.Store

	// MaxModuleSize bounds a single frame's declared length; 0 selects
	// container.DefaultMaxModuleSize.
	MaxModuleSize uint64

	Mode Mode

	// ModuleLoader is installed on the engine runtime before any context
	// is created.
	ModuleLoader engine.ModuleLoader

	// Args is forwarded to each context for scripts to read.
	Args []string

	// StrictSingleEntry runs only the designated (last) entry record in
	// binary mode, reporting skipped earlier entries through OnError.
	// The default preserves the historical run-all behavior.
	StrictSingleEntry bool

	Hooks Hooks

	// Logger receives lifecycle logs; nil selects a no-op logger.
	Logger *zap.Logger
	// Debug gates debug-level lifecycle logging on Logger.
	Debug bool
}

// Executor sequences runtime creation, context creation, module preloading,
// entry execution, the asynchronous drain, and teardown. One instance drives
// one runtime/context pair and is not safe for concurrent use.
type Executor struct {
	cfg   Config
	eng   engine.Engine
	log   *zap.Logger
	hooks *callbackRegistry
	store *container.Store
	rt    engine.RuntimeHandle
	ctxh  engine.ContextHandle
	state State
}

// New creates an Executor in the Created state.
func New(cfg Config) (*Executor, error) {
	if cfg.Engine == nil {
		return nil, errors.InvalidInput(errors.PhaseRuntime, "Config.Engine is required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		cfg:   cfg,
		eng:   cfg.Engine,
		log:   log,
		hooks: newCallbackRegistry(cfg.Hooks),
		store: cfg.Store,
		state: StateCreated,
	}, nil
}

// State returns the current lifecycle state.
func (e *Executor) State() State {
	return e.state
}

// Store returns the container store, or nil before one is loaded.
func (e *Executor) Store() *container.Store {
	return e.store
}

// Engine returns the engine driving this Executor. Callers use it to
// operate worker context handles directly.
func (e *Executor) Engine() engine.Engine {
	return e.eng
}

// Execute drives the full lifecycle and returns the drain's completion
// code. 0 conventionally signals a clean drain; a non-zero value is the
// engine-reported drain status and is a weak signal only — per-module
// script errors arrive through the script-error hook.
//
// Container format errors and runtime/context creation failures return a
// typed *errors.Error; script errors never do.
func (e *Executor) Execute(ctx context.Context) (int, error) {
	if e.state != StateCreated {
		return -1, errors.InvalidInput(errors.PhaseExec, fmt.Sprintf("Execute called in state %s", e.state))
	}

	// Container decoding happens before any engine resource exists, so a
	// malformed container leaks no partial state.
	if e.cfg.Mode == ModeBinary && e.store == nil {
		store, err := container.NewParser(e.cfg.MaxModuleSize).ParseFile(e.cfg.EntryPath)
		if err != nil {
			e.state = StateFailed
			return -1, err
		}
		e.store = store
		e.debug("container loaded", zap.Int("records", store.Len()))
	}
	if e.store == nil {
		e.store = container.NewStore(nil)
	}

	rt, err := e.eng.NewRuntime(ctx)
	if err != nil {
		lerr := errors.RuntimeInit(err)
		e.hooks.reportError(lerr.Error())
		e.state = StateFailed
		e.Release(ctx)
		return -1, lerr
	}
	e.rt = rt
	e.setState(StateRuntimeReady)
	e.hooks.runtimeCreated(rt)

	if e.cfg.ModuleLoader != nil {
		if err := e.eng.SetModuleLoader(rt, e.cfg.ModuleLoader); err != nil {
			e.log.Warn("install module loader", zap.Error(err))
		}
	}

	c, err := e.newContext(ctx)
	if err != nil {
		lerr := errors.ContextInit(err)
		e.hooks.reportError(lerr.Error())
		e.state = StateFailed
		e.Release(ctx)
		return -1, lerr
	}
	e.ctxh = c
	e.setState(StateContextReady)
	// The hook fires only after every preload record is resident.
	e.hooks.contextCreated(rt, c)
	e.setState(StateModulesPreloaded)

	e.setState(StateExecuting)
	switch e.cfg.Mode {
	case ModeSource:
		e.executeSource(ctx, c)
	default:
		e.executeBinary(ctx, c)
	}

	e.setState(StateDraining)
	code := e.eng.Drain(ctx, c)
	e.debug("drain finished", zap.Int("code", code))
	if code != 0 {
		if info := CaptureException(e.eng, c); info != nil {
			e.hooks.reportScriptError(info)
		}
	}
	e.hooks.executionComplete()
	e.setState(StateCompleted)
	return code, nil
}

// newContext creates a context and evaluates every preload-only record into
// it, in file order. Shared by Execute and the worker-context factory.
func (e *Executor) newContext(ctx context.Context) (engine.ContextHandle, error) {
	c, err := e.eng.NewContext(ctx, e.rt, &engine.ContextConfig{Args: e.cfg.Args})
	if err != nil {
		return nil, err
	}
	for i, rec := range e.store.Preloads() {
		if !e.eng.EvalBinary(ctx, c, rec.Data, true) {
			// Per-module preload failures are tolerated at the engine's
			// granularity; the pending exception must not outlive this step.
			v := e.eng.TakeException(c)
			e.debug("preload failed",
				zap.Int("preload", i),
				zap.String("error", safeValueString(e.eng, c, v)))
		}
	}
	return c, nil
}

func (e *Executor) executeBinary(ctx context.Context, c engine.ContextHandle) {
	entries := e.store.Entries()
	if len(entries) == 0 {
		e.hooks.reportError(errors.NoEntry().Error())
		return
	}

	if e.cfg.StrictSingleEntry && len(entries) > 1 {
		e.hooks.reportError(errors.InvalidInput(errors.PhaseExec,
			fmt.Sprintf("strict single entry: skipping %d earlier entry record(s)", len(entries)-1)).Error())
		entries = entries[len(entries)-1:]
	}

	for i, rec := range entries {
		if !e.eng.EvalBinary(ctx, c, rec.Data, false) {
			// A failing record never short-circuits the ones after it.
			e.bridgeAndReport(c)
		}
		e.debug("entry record evaluated", zap.Int("entry", i))
	}
}

func (e *Executor) executeSource(ctx context.Context, c engine.ContextHandle) {
	src, err := os.ReadFile(e.cfg.EntryPath)
	if err != nil {
		e.hooks.reportError(errors.New(errors.PhaseExec, errors.KindNoEntry).
			Cause(err).Detail("read entry file %q", e.cfg.EntryPath).Build().Error())
		return
	}

	v, ok := e.eng.EvalSource(ctx, c, e.cfg.EntryPath, src)
	if !ok {
		e.bridgeAndReport(c)
		return
	}

	// Rejected or errored deferred outcomes are re-raised into the pending
	// exception slot so both failure paths converge on one bridging call.
	switch e.eng.DeferredState(c, v) {
	case engine.DeferredRejected:
		e.eng.Throw(c, e.eng.DeferredResult(c, v))
		e.bridgeAndReport(c)
	case engine.DeferredResolved:
		if result := e.eng.DeferredResult(c, v); safeIsError(e.eng, c, result) {
			e.eng.Throw(c, result)
			e.bridgeAndReport(c)
		}
	}
}

func (e *Executor) bridgeAndReport(c engine.ContextHandle) {
	if info := CaptureException(e.eng, c); info != nil {
		e.hooks.reportScriptError(info)
	}
}

// Release tears the instance down: before-release hook, then the context
// handle, then the runtime handle, in that order. Idempotent.
func (e *Executor) Release(ctx context.Context) error {
	if e.state == StateReleased {
		return nil
	}

	e.hooks.beforeRelease(e.rt, e.ctxh)

	var firstErr error
	if e.ctxh != nil {
		if err := e.eng.FreeContext(ctx, e.ctxh); err != nil {
			firstErr = err
		}
		e.ctxh = nil
	}
	if e.rt != nil {
		if err := e.eng.FreeRuntime(ctx, e.rt); err != nil && firstErr == nil {
			firstErr = err
		}
		e.rt = nil
	}
	e.setState(StateReleased)
	return firstErr
}

func (e *Executor) setState(s State) {
	e.debug("state transition", zap.String("from", e.state.String()), zap.String("to", s.String()))
	e.state = s
}

func (e *Executor) debug(msg string, fields ...zap.Field) {
	if e.cfg.Debug {
		e.log.Debug(msg, fields...)
	}
}
