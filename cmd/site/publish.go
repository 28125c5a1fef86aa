package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-mdsite/internal/content"
	"github.com/alnah/go-mdsite/internal/fileutil"
	"github.com/alnah/go-mdsite/internal/hints"
	"github.com/alnah/go-mdsite/internal/server"
)

// ErrMissingToken indicates the admin token variable is unset.
var ErrMissingToken = errors.New("admin token not set")

const defaultPublishURL = "http://localhost:8000"

type publishFlags struct {
	title     string
	slug      string
	summary   string
	draft     bool
	overwrite bool
	timeout   time.Duration
}

func newPublishCmd(a *app) *cobra.Command {
	var flags publishFlags

	cmd := &cobra.Command{
		Use:   "publish <post.md>",
		Short: "Upload a Markdown post to a running site",
		Long: `publish reads a Markdown post, compresses it and uploads it to the site's
admin endpoint. Title, slug, date, summary and draft come from the post's
front matter; flags override them. The bearer token is read from the
variable named by admin.tokenEnv (SITE_ADMIN_KEY by default).`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bindFlags(cmd.Flags(), map[string]string{"publish.url": "url"}); err != nil {
				return err
			}
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}

			tokenEnv := cfg.Admin.TokenEnv
			token := a.deps.Getenv(tokenEnv)
			if token == "" {
				return fmt.Errorf("%w: %s%s", ErrMissingToken, tokenEnv, hints.ForAdminToken(tokenEnv))
			}

			up, err := uploadFromFile(args[0])
			if err != nil {
				return err
			}
			set := cmd.Flags().Changed
			if set("title") {
				up.Title = flags.title
			}
			if set("slug") {
				up.Slug = flags.slug
			}
			if set("summary") {
				up.Summary = flags.summary
			}
			if set("draft") {
				up.Draft = flags.draft
			}
			up.Overwrite = flags.overwrite

			baseURL := a.v.GetString("publish.url")
			if !fileutil.IsURL(baseURL) {
				return fmt.Errorf("%w: --url %q must start with http:// or https://", ErrUsage, baseURL)
			}
			client := &server.Client{
				BaseURL: baseURL,
				Token:   token,
				HTTP:    &http.Client{Timeout: flags.timeout},
			}
			url, err := client.Publish(cmd.Context(), up)
			if err != nil {
				return err
			}
			a.printf("Published %s at %s\n", up.Slug, url)
			return nil
		},
	}

	f := cmd.Flags()
	f.String("url", defaultPublishURL, "site base URL (env SITE_PUBLISH_URL)")
	f.StringVar(&flags.title, "title", "", "post title")
	f.StringVar(&flags.slug, "slug", "", "post slug")
	f.StringVar(&flags.summary, "summary", "", "post summary")
	f.BoolVar(&flags.draft, "draft", false, "publish as a draft")
	f.BoolVar(&flags.overwrite, "overwrite", false, "replace an existing post with the same slug")
	f.DurationVar(&flags.timeout, "timeout", 30*time.Second, "request timeout")
	return cmd
}

// uploadFromFile builds an upload from a post file and its front matter.
func uploadFromFile(path string) (server.PostUpload, error) {
	p, err := content.ParsePost(path)
	if err != nil {
		return server.PostUpload{}, err
	}
	body, err := content.ReadBody(p)
	if err != nil {
		return server.PostUpload{}, err
	}
	encoded, err := server.EncodeContent(body)
	if err != nil {
		return server.PostUpload{}, err
	}

	up := server.PostUpload{
		Title:                 p.Title,
		Slug:                  p.Slug,
		Summary:               p.Summary,
		Draft:                 p.Draft,
		FileContentCompressed: encoded,
	}
	if !p.Date.IsZero() {
		up.Timestamp = p.Date.Unix()
	}
	return up, nil
}
