// Command eval is the host-owned CLI surface: eval <file.data>
// [--watch] [--json]. File watching and argument parsing are host
// responsibilities, not core ones — this is a thin adapter over
// package ldc.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	ldc "github.com/ldcrun/ldc"
)

func main() {
	watch := flag.Bool("watch", false, "re-evaluate on file change")
	jsonOut := flag.Bool("json", false, "emit the full JSON result envelope")
	optionsFile := flag.String("options", "", "path to a YAML options file")
	flag.Parse()
	path := flag.Arg(0)
	rest := flag.Args()
	if len(rest) > 1 {
		// Flags may also follow the file argument, as in the usage line.
		flag.CommandLine.Parse(rest[1:])
		rest = append([]string{path}, flag.Args()...)
	}

	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: eval <file.data> [--watch] [--json] [--options file.yaml]")
		os.Exit(1)
	}

	e, err := newEvaluator(*optionsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "eval: %v\n", err)
		os.Exit(1)
	}

	if err := runOnce(e, path, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "eval: %v\n", err)
		os.Exit(1)
	}

	if !*watch {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "eval: watch: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		fmt.Fprintf(os.Stderr, "eval: watch: %v\n", err)
		os.Exit(1)
	}

	var lastRun time.Time
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if time.Since(lastRun) < 100*time.Millisecond {
				continue
			}
			lastRun = time.Now()
			if err := runOnce(e, path, *jsonOut); err != nil {
				fmt.Fprintf(os.Stderr, "eval: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "eval: watch: %v\n", err)
		}
	}
}

func newEvaluator(optionsFile string) (*ldc.LDC, error) {
	if optionsFile == "" {
		return ldc.New(), nil
	}
	return ldc.LoadOptionsFile(optionsFile)
}

func runOnce(e *ldc.LDC, path string, asJSON bool) error {
	doc, err := ldc.LoadFile(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	res, err := e.Evaluate(context.Background(), doc)
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", path, err)
	}

	sig, err := e.Sign(res)
	if err != nil {
		return fmt.Errorf("signing result: %w", err)
	}

	if asJSON {
		b, err := ldc.MarshalResultJSON(res, sig)
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	b, err := json.MarshalIndent(res.Value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	for _, d := range res.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", d.Severity, d.Code, d.Message)
	}
	return nil
}
