package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alnah/go-mdsite/internal/content"
)

type importFlags struct {
	slug      string
	title     string
	date      string
	summary   string
	domain    string
	draft     bool
	overwrite bool
}

func newImportCmd(a *app) *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <page.html>",
		Short: "Convert a legacy HTML page into a Markdown post",
		Long: `import converts an HTML page to Markdown and saves it in the posts directory.
The title comes from the page's <title> or first <h1> unless --title is set,
and the slug is derived from the title unless --slug is set.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bindFlags(cmd.Flags(), map[string]string{"content.postsdir": "dir"}); err != nil {
				return err
			}
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening page: %w", err)
			}
			defer func() { _ = f.Close() }()

			imported, err := content.ImportHTML(f, flags.domain)
			if err != nil {
				return err
			}

			title := flags.title
			if title == "" {
				title = imported.Title
			}
			if title == "" {
				return fmt.Errorf("%w: %s has no <title> or <h1>, pass --title", ErrUsage, args[0])
			}

			store, err := content.NewStore(cfg.Content.PostsDir, cfg.Content.Pattern, content.WithClock(a.deps.Now))
			if err != nil {
				return err
			}
			p, err := store.Save(content.Upload{
				Title:     title,
				Slug:      flags.slug,
				Date:      flags.date,
				Summary:   flags.summary,
				Draft:     flags.draft,
				Content:   imported.Markdown,
				Overwrite: flags.overwrite,
			})
			if err != nil {
				return err
			}
			a.printf("Imported %s -> %s (%s)\n", args[0], p.Path, p.URL())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.slug, "slug", "", "post slug (default derived from the title)")
	f.StringVar(&flags.title, "title", "", "post title (default from the page)")
	f.StringVar(&flags.date, "date", "", `post date, "auto" for now (default auto)`)
	f.StringVar(&flags.summary, "summary", "", "post summary")
	f.StringVar(&flags.domain, "domain", "", "domain that relative links are resolved against")
	f.BoolVar(&flags.draft, "draft", false, "save as a draft")
	f.BoolVar(&flags.overwrite, "overwrite", false, "replace an existing post with the same slug")
	f.String("dir", "", "posts directory (overrides content.postsDir)")
	return cmd
}
