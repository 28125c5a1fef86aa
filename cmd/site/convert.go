package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	mdsite "github.com/alnah/go-mdsite"
	"github.com/alnah/go-mdsite/internal/fileutil"
	"github.com/alnah/go-mdsite/internal/hints"
)

type convertFlags struct {
	output     string
	stdout     bool
	noPretty   bool
	standalone bool
	title      string
}

func newConvertCmd(a *app) *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert <file.md>",
		Short: "Convert a Markdown file to HTML with the site's extensions",
		Long: `convert renders one Markdown file with the extensions configured for the
site. The HTML is written next to the source as <base>.html unless -o or
--stdout is given.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.stdout && flags.output != "" {
				return fmt.Errorf("%w: --output and --stdout are mutually exclusive", ErrUsage)
			}
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			conv, err := mdsite.NewConverter(mdsite.WithExtensions(cfg.Convert.Extensions))
			if err != nil {
				return err
			}

			src := args[0]
			opts := mdsite.Options{
				OutputPath: flags.output,
				Pretty:     cfg.Convert.Pretty && !flags.noPretty,
				Standalone: flags.standalone,
				Title:      flags.title,
				BaseURL:    cfg.Site.BaseURL,
			}

			if flags.stdout {
				html, err := conv.Convert(cmd.Context(), src, opts)
				if err != nil {
					return convertHint(err, src)
				}
				_, err = io.WriteString(a.deps.Stdout, html)
				return err
			}

			start := a.deps.Now()
			out, err := conv.ConvertFile(cmd.Context(), src, opts)
			if err != nil {
				return convertHint(err, src)
			}
			if a.verbose {
				a.printf("%s -> %s (%v)\n", src, out, a.deps.Now().Sub(start).Round(time.Millisecond))
				return nil
			}
			a.printf("Created %s\n", out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output file (default <base>.html next to the source)")
	f.BoolVar(&flags.stdout, "stdout", false, "write HTML to stdout instead of a file")
	f.BoolVar(&flags.noPretty, "no-pretty", false, "keep the renderer's HTML layout")
	f.BoolVar(&flags.standalone, "standalone", false, "wrap the fragment in an HTML5 document")
	f.StringVar(&flags.title, "title", "", "standalone document title")
	return cmd
}

// convertHint appends the hint matching the side of the conversion that
// failed.
func convertHint(err error, src string) error {
	if !errors.Is(err, mdsite.ErrFileAccess) {
		return err
	}
	if fileutil.FileExists(src) {
		return fmt.Errorf("%w%s", err, hints.ForOutputDirectory())
	}
	return fmt.Errorf("%w%s", err, hints.ForSourceNotFound(false))
}
