package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	mdsite "github.com/alnah/go-mdsite"
	"github.com/alnah/go-mdsite/internal/fileutil"
	"github.com/alnah/go-mdsite/internal/hints"
)

// defaultSource is converted when no file argument is given.
const defaultSource = "./test.md"

// ErrTooManyArgs indicates more than one positional argument.
var ErrTooManyArgs = errors.New("too many arguments")

// run converts one Markdown file according to flags.
func run(ctx context.Context, args []string, flags *convertFlags, deps *Dependencies) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: expected at most one file, got %d", ErrTooManyArgs, len(args))
	}

	src, defaulted := defaultSource, true
	if len(args) == 1 {
		src, defaulted = args[0], false
	}

	conv, err := mdsite.NewConverter(mdsite.WithExtensions(flags.extensionConfigs()))
	if err != nil {
		return err
	}

	opts := mdsite.Options{
		Pretty:     !flags.noPretty,
		Standalone: flags.standalone,
		Title:      flags.title,
	}

	start := deps.Now()

	if flags.stdout {
		html, err := conv.Convert(ctx, src, opts)
		if err != nil {
			return withHint(err, src, defaulted)
		}
		_, err = io.WriteString(deps.Stdout, html)
		return err
	}

	opts.OutputPath = flags.output
	if opts.OutputPath == "" {
		opts.OutputPath = mdsite.OutputPath(src, mdsite.OutputPrefix)
	}

	out, err := conv.ConvertFile(ctx, src, opts)
	if err != nil {
		return withHint(err, src, defaulted)
	}

	switch {
	case flags.common.quiet:
	case flags.common.verbose:
		fmt.Fprintf(deps.Stdout, "%s -> %s (%v)\n", src, out, deps.Now().Sub(start).Round(time.Millisecond))
	default:
		fmt.Fprintf(deps.Stdout, "Created %s\n", out)
	}
	return nil
}

// withHint appends the hint matching the side of the conversion that
// failed: a readable source means the destination was the problem.
func withHint(err error, src string, defaulted bool) error {
	if !errors.Is(err, mdsite.ErrFileAccess) {
		return err
	}
	if fileutil.FileExists(src) {
		return fmt.Errorf("%w%s", err, hints.ForOutputDirectory())
	}
	return fmt.Errorf("%w%s", err, hints.ForSourceNotFound(defaulted))
}
