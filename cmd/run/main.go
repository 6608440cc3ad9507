package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/script-runtime/engine"
	"github.com/wippyai/script-runtime/runtime"
)

func main() {
	var (
		file        = flag.String("file", "", "Path to a module container or source file")
		mode        = flag.String("mode", "binary", "Execution mode: binary or source")
		engineName  = flag.String("engine", "goja", "Script engine: goja or wazero")
		maxModule   = flag.Uint64("max-module", 0, "Maximum frame size in bytes (0 = default 100 MiB)")
		strictEntry = flag.Bool("strict-entry", false, "Run only the designated entry record")
		debug       = flag.Bool("debug", false, "Enable debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -file <app.jsc> [-mode binary|source] [-engine goja|wazero] [args...]")
		fmt.Fprintln(os.Stderr, "       run -file <app.jsc> -i  (interactive mode)")
		os.Exit(1)
	}

	eng, err := selectEngine(*engineName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if *debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		engine.SetLogger(logger)
		engine.SetDebug(true)
	}

	execMode := runtime.ModeBinary
	if *mode == "source" {
		execMode = runtime.ModeSource
	}

	cfg := runtime.Config{
		Engine:            eng,
		EntryPath:         *file,
		MaxModuleSize:     *maxModule,
		Mode:              execMode,
		Args:              flag.Args(),
		StrictSingleEntry: *strictEntry,
		Logger:            logger,
		Debug:             *debug,
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	code, err := run(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func selectEngine(name string) (engine.Engine, error) {
	switch name {
	case "goja":
		return engine.NewGojaEngine(), nil
	case "wazero":
		return engine.NewWazeroEngine(), nil
	}
	return nil, fmt.Errorf("unknown engine %q (want goja or wazero)", name)
}

func run(cfg runtime.Config) (int, error) {
	ctx := context.Background()

	cfg.Hooks = runtime.Hooks{
		OnError: func(message string) {
			fmt.Fprintf(os.Stderr, "error: %s\n", message)
		},
		OnScriptError: func(name, message, stack string) {
			if name != "" {
				fmt.Fprintf(os.Stderr, "%s: %s\n", name, message)
			} else {
				fmt.Fprintf(os.Stderr, "uncaught: %s\n", message)
			}
			if stack != "" {
				fmt.Fprintln(os.Stderr, stack)
			}
		},
	}

	exec, err := runtime.New(cfg)
	if err != nil {
		return 1, err
	}
	defer exec.Release(ctx)

	return exec.Execute(ctx)
}
