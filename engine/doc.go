// Package engine defines the capability surface the lifecycle orchestrator
// consumes from a script engine, and provides two adapters.
//
// The Engine interface is deliberately narrow: runtime and context handle
// management, a module-resolution loader hook, binary and source evaluation,
// pending-exception inspection, and the pending-task drain. The orchestrator
// in package runtime never inspects script semantics; everything an engine
// does with module bytes is its own business.
//
// Two adapters are provided:
//
//   - GojaEngine runs JavaScript on the pure-Go goja interpreter. Container
//     frames carry JS text, compiled per frame via goja.Compile. Promises map
//     to deferred evaluation results, and a per-context task queue (fed by a
//     setTimeout global) backs the drain step.
//
//   - WazeroEngine runs WebAssembly on wazero. Container frames carry wasm
//     binaries; preload-only frames are compiled and registered as importable
//     library modules, entry frames are instantiated and started. Traps and
//     exit statuses form the pending-exception state.
//
// Handles are opaque and borrowed: the orchestrator owns them, callbacks
// receive them only for the duration of a call and must not retain them.
package engine
