// Package runtime drives a script engine through the container execution
// lifecycle.
//
// An Executor owns one engine runtime and one execution context and walks a
// linear state machine:
//
//	Created -> RuntimeReady -> ContextReady -> ModulesPreloaded
//	        -> Executing -> Draining -> Completed
//	any state -> Failed (unrecoverable step failure)
//	Completed|Failed -> Released (terminal, idempotent)
//
// Preload-only container records are evaluated into the context before the
// context-created hook fires, so hook code may assume every dependency is
// already resident. Entry records then run in file order; in binary mode a
// failing record never stops the ones after it. Script failures of any
// origin (preload, entry, drain) are bridged to structured ExceptionInfo
// and reported through the script-error hook; they never abort the
// orchestrator. Lifecycle failures (runtime or context creation) are fatal
// to the instance and reported through the host-level error hook.
//
// Secondary worker-style contexts are created with NewWorkerContext, which
// repeats the preload step against the same immutable container store.
//
// An Executor is driven synchronously by one calling goroutine. Hooks run on
// that same goroutine.
package runtime
