package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/alnah/go-mdsite/internal/content"
)

func newPostsCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List blog posts, newest first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.bindFlags(cmd.Flags(), map[string]string{"content.postsdir": "dir"}); err != nil {
				return err
			}
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			idx, err := content.BuildIndex(cfg.Content.PostsDir, cfg.Content.Pattern)
			if err != nil {
				return err
			}

			posts := idx.List()
			if all {
				posts = idx.All()
			}
			if len(posts) == 0 {
				a.printf("No posts found in %s\n", cfg.Content.PostsDir)
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(a.deps.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Slug", "Title", "Date", "Status"})
			t.SetColumnConfigs([]table.ColumnConfig{
				{Number: 1, Align: text.AlignLeft, WidthMax: 40},
				{Number: 2, Align: text.AlignLeft, WidthMax: 60},
				{Number: 3, Align: text.AlignLeft},
				{Number: 4, Align: text.AlignLeft},
			})
			for _, p := range posts {
				status := "published"
				if p.Draft {
					status = "draft"
				}
				t.AppendRow(table.Row{p.Slug, p.Title, p.FormatDate(cfg.Content.DateFormat), status})
			}
			t.AppendFooter(table.Row{"", "", "Total", len(posts)})
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include drafts")
	cmd.Flags().String("dir", "", "posts directory (overrides content.postsDir)")
	return cmd
}
