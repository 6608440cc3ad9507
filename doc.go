// Package scriptruntime hosts precompiled script programs packed into
// binary module containers.
//
// A container is a flat sequence of frames, each carrying one module and a
// flag marking it preload-only or executable. The packages compose in
// layers:
//
//   - container decodes and encodes containers and holds the ordered
//     record store.
//   - engine defines the narrow capability surface a script engine must
//     provide, with adapters for goja (JavaScript) and wazero
//     (WebAssembly).
//   - runtime sequences the execution lifecycle: runtime creation, context
//     creation, preloading, entry execution, the asynchronous drain, and
//     teardown, with single-slot callbacks at each phase.
//
// The usual entry point is runtime.New with a Config naming an engine and
// a container path, then Execute followed by Release:
//
//	exec, err := runtime.New(runtime.Config{
//		Engine:    engine.NewGojaEngine(),
//		EntryPath: "app.jsc",
//	})
//	if err != nil {
//		return err
//	}
//	defer exec.Release(ctx)
//	code, err := exec.Execute(ctx)
package scriptruntime
