package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-mdsite/internal/process"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := process.NotifyContext(context.Background())
	code := runMain(ctx, os.Args[1:], DefaultDeps())
	stop()
	os.Exit(code)
}

// runMain parses args, runs the conversion and reports the outcome.
// It returns the process exit code.
func runMain(ctx context.Context, args []string, deps *Dependencies) int {
	flags, positional, err := parseFlags(args, deps.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(deps.Stderr, err)
		return ExitUsage
	}

	if flags.version {
		fmt.Fprintf(deps.Stdout, "mdconvert %s\n", Version)
		return ExitSuccess
	}

	if flags.common.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(deps.Stderr, format+"\n", args...)
		}))
	}

	if err := run(ctx, positional, flags, deps); err != nil {
		fmt.Fprintln(deps.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}
