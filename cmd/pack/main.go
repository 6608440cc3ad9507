package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/wippyai/script-runtime/container"
)

// pack assembles a module container from compiled module files. Each
// trailing argument is a file path; a "preload:" prefix marks the record as
// preload-only. Record order follows argument order, so the last plain
// argument becomes the designated entry.
func main() {
	out := flag.String("out", "app.jsc", "Output container path")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: pack -out <app.jsc> [preload:]<file> ...")
		os.Exit(1)
	}

	var records []container.Record
	for _, arg := range flag.Args() {
		preload := false
		path := arg
		if rest, ok := strings.CutPrefix(arg, "preload:"); ok {
			preload = true
			path = rest
		}
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: read %s: %v\n", path, err)
			os.Exit(1)
		}
		records = append(records, container.Record{Data: data, PreloadOnly: preload})
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: create %s: %v\n", *out, err)
		os.Exit(1)
	}
	if err := container.Write(f, records); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error: write %s: %v\n", *out, err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: close %s: %v\n", *out, err)
		os.Exit(1)
	}

	preloads := 0
	for _, r := range records {
		if r.PreloadOnly {
			preloads++
		}
	}
	fmt.Printf("%s: %d record(s), %d preload(s)\n", *out, len(records), preloads)
}
