// Package main provides heapctl, a small command-line front end for the
// heap package: run a workload against one or more heaps, print their
// usage, and re-run on file change. Subcommand dispatch follows the
// teacher CLI's switch-based routing (cmd/orizon/main.go).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	semver "github.com/Masterminds/semver/v3"
	"github.com/fsnotify/fsnotify"

	"github.com/kestrel-systems/heapd/internal/stress"
)

// buildVersion is the heapctl release; overridden at link time with
// -ldflags "-X main.buildVersion=...", mirroring the teacher's version
// injection for its own CLI.
var buildVersion = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	sub := os.Args[1]
	args := os.Args[2:]

	var err error

	switch sub {
	case "help", "-h", "--help":
		usage()
	case "version", "-v", "--version":
		err = runVersion(args)
	case "run":
		err = runWorkload(args)
	case "watch":
		err = runWatch(args)
	default:
		fmt.Fprintf(os.Stderr, "heapctl: unknown command %q\n", sub)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "heapctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: heapctl <command> [flags]

commands:
  run       drive a randomized alloc/free workload against one or more heaps
  watch     re-run the workload whenever a file changes
  version   print heapctl's version
  help      show this message`)
}

// runVersion prints buildVersion, validating it parses as semver the same
// way the teacher's outdated command validates dependency constraints
// (cmd/orizon/pkg/commands/outdated.go) before ever comparing versions.
func runVersion(args []string) error {
	fs := flag.NewFlagSet("version", flag.ExitOnError)
	min := fs.String("min", "", "fail if buildVersion is older than this semver constraint")

	if err := fs.Parse(args); err != nil {
		return err
	}

	v, err := semver.NewVersion(buildVersion)
	if err != nil {
		return fmt.Errorf("heapctl build carries an invalid version %q: %w", buildVersion, err)
	}

	if *min != "" {
		constraint, err := semver.NewConstraint(*min)
		if err != nil {
			return fmt.Errorf("invalid -min constraint %q: %w", *min, err)
		}

		if !constraint.Check(v) {
			return fmt.Errorf("heapctl %s does not satisfy %s", v, *min)
		}
	}

	fmt.Println(v.String())

	return nil
}

// runWorkload parses run's flags and drives internal/stress.Run once,
// printing each heap's final Stats.
func runWorkload(args []string) error {
	cfg, fs := workloadFlags()
	if err := fs.Parse(args); err != nil {
		return err
	}

	return driveWorkload(context.Background(), cfg, os.Stdout)
}

func workloadFlags() (*stress.Config, *flag.FlagSet) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfg := &stress.Config{}

	fs.IntVar(&cfg.Heaps, "heaps", 4, "number of independent heaps to drive")
	fs.IntVar(&cfg.Ops, "ops", 2000, "alloc/free operations per heap")
	fs.IntVar(&cfg.Concurrency, "concurrency", 0, "worker cap (0 = GOMAXPROCS*8)")
	fs.Int64Var(&cfg.Seed, "seed", 1, "base RNG seed; heap i uses seed+i")

	return cfg, fs
}

func driveWorkload(ctx context.Context, cfg *stress.Config, w io.Writer) error {
	results, err := stress.Run(ctx, *cfg)
	if err != nil {
		return fmt.Errorf("run workload: %w", err)
	}

	fmt.Fprintln(w, "heap  live  allocs  frees  freelist")

	for _, r := range results {
		fmt.Fprintf(w, "%-5d %-5d %-7d %-6d %d\n",
			r.HeapIndex, r.Stats.LiveBytes, r.Stats.AllocCount, r.Stats.FreeCount, r.Stats.FreeListLength)
	}

	return nil
}

// runWatch watches a file or directory and re-runs the workload on every
// write, in the spirit of the teacher's FSNotifyWatcher
// (internal/runtime/vfs/watch_fsnotify.go), simplified to heapctl's single
// watched path and its own op filter rather than a shared Watcher
// interface.
func runWatch(args []string) error {
	cfg, fs := workloadFlags()
	path := fs.String("path", ".", "file or directory to watch")

	if err := fs.Parse(args); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(*path); err != nil {
		return fmt.Errorf("watch %s: %w", *path, err)
	}

	fmt.Printf("watching %s, ctrl-c to stop\n", *path)

	if err := driveWorkload(context.Background(), cfg, os.Stdout); err != nil {
		return err
	}

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			fmt.Printf("\n%s changed, re-running\n", ev.Name)

			if err := driveWorkload(context.Background(), cfg, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "heapctl: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			fmt.Fprintf(os.Stderr, "heapctl: watch error: %v\n", err)
		}
	}
}
