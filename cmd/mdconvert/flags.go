package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	mdsite "github.com/alnah/go-mdsite"
)

// commonFlags holds the output verbosity flags.
type commonFlags struct {
	quiet   bool
	verbose bool
}

// convertFlags holds all flags for a conversion.
type convertFlags struct {
	common     commonFlags
	output     string
	noPretty   bool
	stdout     bool
	standalone bool
	title      string
	extensions []string
	version    bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// parseFlags parses command-line flags and returns positional args.
// Usage goes to w when -h is given.
func parseFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("mdconvert", flag.ContinueOnError)
	fs.SetOutput(w)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (default: output_<name>.html next to the source)")
	fs.BoolVar(&f.noPretty, "no-pretty", false, "skip pretty printing")
	fs.BoolVar(&f.stdout, "stdout", false, "print HTML to stdout instead of writing a file")
	fs.BoolVar(&f.standalone, "standalone", false, "wrap the output in a complete HTML document")
	fs.StringVar(&f.title, "title", "", "document title for --standalone (default: front matter title)")
	fs.StringSliceVarP(&f.extensions, "extension", "e", nil, "enable an extension on top of extra (repeatable)")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printUsage(w, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// extensionConfigs returns the extra bundle plus every extension named with
// --extension, each with its default configuration.
func (f *convertFlags) extensionConfigs() mdsite.ExtensionConfigs {
	configs := mdsite.DefaultExtensions()
	for _, name := range f.extensions {
		configs[name] = map[string]any{}
	}
	return configs
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: mdconvert [file] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a Markdown file to HTML.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintf(w, "  file    Markdown source (default: %s)\n", defaultSource)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
