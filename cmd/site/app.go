package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	mdsite "github.com/alnah/go-mdsite"
	"github.com/alnah/go-mdsite/internal/assets"
	"github.com/alnah/go-mdsite/internal/build"
	"github.com/alnah/go-mdsite/internal/config"
	"github.com/alnah/go-mdsite/internal/content"
	"github.com/alnah/go-mdsite/internal/page"
	"github.com/alnah/go-mdsite/internal/resume"
)

// siteParts are the components built from a config, shared by serve and
// build.
type siteParts struct {
	cfg       *config.Config
	converter *mdsite.Converter
	posts     *content.Store
	pages     *page.Renderer
	site      page.Site
}

// openSite resolves assets, indexes posts and builds the converter.
func (a *app) openSite(cfg *config.Config) (*siteParts, error) {
	resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, err
	}
	css, err := resolver.ResolveStyle(cfg.Site.Style)
	if err != nil {
		return nil, err
	}

	conv, err := mdsite.NewConverter(mdsite.WithExtensions(cfg.Convert.Extensions))
	if err != nil {
		return nil, err
	}

	posts, err := content.NewStore(cfg.Content.PostsDir, cfg.Content.Pattern, content.WithClock(a.deps.Now))
	if err != nil {
		return nil, err
	}

	pages := page.NewRenderer(resolver, page.WithClock(a.deps.Now))
	err = pages.Preload(
		assets.TemplateHome,
		assets.TemplateAbout,
		assets.TemplatePostsList,
		assets.TemplatePost,
		assets.TemplateError,
		resumeTemplate(cfg),
	)
	if err != nil {
		return nil, err
	}

	return &siteParts{
		cfg:       cfg,
		converter: conv,
		posts:     posts,
		pages:     pages,
		site:      page.NewSite(cfg.Site, css),
	}, nil
}

// resumeHTML renders the resume page as served at /resume. The chrome
// engine prints it to PDF.
func (s *siteParts) resumeHTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r, err := resume.Load(s.cfg.Resume.DataPath)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	data := &page.Data{Site: s.site, Title: "Resume", Resume: r}
	if err := s.pages.Render(&buf, resumeTemplate(s.cfg), data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// buildResume runs the configured resume build. The "none" engine returns
// no results.
func (s *siteParts) buildResume(ctx context.Context, logger *log.Logger) ([]build.Result, error) {
	steps, err := build.ResumeSteps(s.cfg.Resume, s.resumeHTML)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, nil
	}
	results, err := build.NewRunner(logger).Run(ctx, steps...)
	if err != nil {
		return results, fmt.Errorf("building resume: %w", err)
	}
	return results, nil
}

func resumeTemplate(cfg *config.Config) string {
	if cfg.Resume.Template == "" {
		return assets.TemplateResume
	}
	return cfg.Resume.Template
}
