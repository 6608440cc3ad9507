package runtime

import (
	"context"

	"github.com/wippyai/script-runtime/engine"
	"github.com/wippyai/script-runtime/errors"
)

// WorkerContext is a secondary execution context sharing the Executor's
// runtime. Worker contexts receive the same preload set as the primary
// context but skip entry execution and lifecycle hooks entirely; the caller
// drives them through the engine directly.
type WorkerContext struct {
	e      *Executor
	handle engine.ContextHandle
	closed bool
}

// NewWorkerContext creates a worker context on the Executor's runtime and
// preloads every preload-only record into it, in file order. The Executor
// must have reached RuntimeReady; worker contexts created before Release
// must be closed before Release.
func (e *Executor) NewWorkerContext(ctx context.Context) (*WorkerContext, error) {
	if e.rt == nil {
		return nil, errors.NotInitialized(errors.PhaseContext, "engine runtime")
	}
	c, err := e.newContext(ctx)
	if err != nil {
		return nil, errors.ContextInit(err)
	}
	return &WorkerContext{e: e, handle: c}, nil
}

// Handle returns the underlying context handle for direct engine use.
func (w *WorkerContext) Handle() engine.ContextHandle {
	return w.handle
}

// Close frees the worker's context. Idempotent.
func (w *WorkerContext) Close(ctx context.Context) error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.e.eng.FreeContext(ctx, w.handle)
	w.handle = nil
	return err
}
