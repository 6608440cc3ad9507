package runtime_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/wippyai/script-runtime/container"
	"github.com/wippyai/script-runtime/engine"
	"github.com/wippyai/script-runtime/runtime"
)

// End-to-end run against the JS engine: a packed container with a preload
// defining a global and an entry that throws if the preload is missing.
func TestGojaBinaryContainerEndToEnd(t *testing.T) {
	blob := container.Build([]container.Record{
		{Data: []byte(`var greeting = "hello";`), PreloadOnly: true},
		{Data: []byte(`if (greeting !== "hello") { throw new Error("preload missing"); }`)},
	})
	path := filepath.Join(t.TempDir(), "app.jsc")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatal(err)
	}

	var scriptErrs []string
	exec, err := runtime.New(runtime.Config{
		Engine:    engine.NewGojaEngine(),
		EntryPath: path,
		Hooks: runtime.Hooks{
			OnScriptError: func(name, message, stack string) {
				scriptErrs = append(scriptErrs, name+": "+message)
			},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer exec.Release(context.Background())

	code, err := exec.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if code != 0 {
		t.Fatalf("code = %d, want 0", code)
	}
	if len(scriptErrs) != 0 {
		t.Fatalf("script errors = %v", scriptErrs)
	}
	if exec.State() != runtime.StateCompleted {
		t.Fatalf("state = %s, want completed", exec.State())
	}
}

func TestGojaScriptErrorSurfacesThroughHook(t *testing.T) {
	blob := container.Build([]container.Record{
		{Data: []byte(`throw new TypeError("entry exploded");`)},
	})
	path := filepath.Join(t.TempDir(), "bad.jsc")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatal(err)
	}

	var names, messages []string
	exec, err := runtime.New(runtime.Config{
		Engine:    engine.NewGojaEngine(),
		EntryPath: path,
		Hooks: runtime.Hooks{
			OnScriptError: func(name, message, stack string) {
				names = append(names, name)
				messages = append(messages, message)
			},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer exec.Release(context.Background())

	code, err := exec.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if code != 0 {
		t.Fatalf("code = %d, want 0", code)
	}
	if len(names) != 1 || names[0] != "TypeError" || messages[0] != "entry exploded" {
		t.Fatalf("names = %v, messages = %v", names, messages)
	}
}

func TestGojaWorkerContextSharesPreloads(t *testing.T) {
	exec, err := runtime.New(runtime.Config{
		Engine: engine.NewGojaEngine(),
		Store: container.NewStore([]container.Record{
			{Data: []byte(`var shared = 42;`), PreloadOnly: true},
		}),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer exec.Release(context.Background())

	// Zero entries: the run completes with only the no-entry report.
	if _, err := exec.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	w, err := exec.NewWorkerContext(context.Background())
	if err != nil {
		t.Fatalf("NewWorkerContext: %v", err)
	}
	defer w.Close(context.Background())

	v, ok := exec.Engine().EvalSource(context.Background(), w.Handle(), "probe.js", []byte(`shared`))
	if !ok {
		t.Fatal("probe eval failed")
	}
	if got := exec.Engine().ValueString(w.Handle(), v); got != "42" {
		t.Fatalf("shared = %q, want 42", got)
	}
}
