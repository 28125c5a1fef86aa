// Package page renders site pages: a page template executed inside the
// base layout, both loaded through the asset resolver.
package page

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-mdsite/internal/assets"
	"github.com/alnah/go-mdsite/internal/config"
	"github.com/alnah/go-mdsite/internal/content"
	"github.com/alnah/go-mdsite/internal/hints"
	"github.com/alnah/go-mdsite/internal/resume"
)

var (
	// ErrTemplateParse indicates a page or layout template failed to parse.
	ErrTemplateParse = errors.New("template parse failed")
	// ErrRender indicates template execution failed.
	ErrRender = errors.New("page render failed")
)

// Site is the part of the page data shared by every page.
type Site struct {
	Title   string
	Favicon string
	CSS     template.CSS
	Quotes  []config.Quote
}

// NewSite builds the shared page data from config and the resolved CSS.
func NewSite(cfg config.SiteConfig, css string) Site {
	return Site{
		Title:   cfg.Title,
		Favicon: cfg.Favicon,
		CSS:     template.CSS(css), // #nosec G203 -- stylesheet comes from site assets
		Quotes:  cfg.Quotes,
	}
}

// PostView is a post as the templates see it.
type PostView struct {
	Title   string
	URL     string
	Date    string
	Summary string
}

// NewPostView formats p for display using dateFormat.
func NewPostView(p content.Post, dateFormat string) PostView {
	return PostView{
		Title:   p.Title,
		URL:     p.URL(),
		Date:    p.FormatDate(dateFormat),
		Summary: p.Summary,
	}
}

// NewPostViews formats every post in posts.
func NewPostViews(posts []content.Post, dateFormat string) []PostView {
	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = NewPostView(p, dateFormat)
	}
	return views
}

// Data is passed to every template. Page templates read only the fields
// they need.
type Data struct {
	Site    Site
	Title   string
	Content template.HTML // converter output, trusted
	Posts   []PostView
	Post    *PostView
	Resume  *resume.Resume
	Status  int
	Message string
	Year    int
}

// TemplateSource supplies template sources. *assets.AssetResolver
// implements it.
type TemplateSource interface {
	LoadTemplateSet(name string) (*assets.TemplateSet, error)
	ListTemplates() ([]string, error)
}

var _ TemplateSource = (*assets.AssetResolver)(nil)

// Renderer parses each template set once and executes it on demand.
// It is safe for concurrent use.
type Renderer struct {
	source TemplateSource
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]*template.Template
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the time source for the footer year.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// NewRenderer creates a Renderer over source.
func NewRenderer(source TemplateSource, opts ...Option) *Renderer {
	r := &Renderer{
		source: source,
		now:    time.Now,
		cache:  make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// funcs are available to every template.
var funcs = template.FuncMap{
	"join": strings.Join,
}

// Render executes the named page inside the base layout and writes the
// result to w. Nothing is written when execution fails.
func (r *Renderer) Render(w io.Writer, name string, data *Data) error {
	tmpl, err := r.template(name)
	if err != nil {
		return err
	}

	if data == nil {
		data = &Data{}
	}
	if data.Year == 0 {
		data.Year = r.now().Year()
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, assets.LayoutTemplateName, data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRender, name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// Preload parses the named templates so template errors surface at startup.
func (r *Renderer) Preload(names ...string) error {
	for _, name := range names {
		if _, err := r.template(name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) template(name string) (*template.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	tmpl, err := r.parse(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[name] = tmpl
	r.mu.Unlock()
	return tmpl, nil
}

func (r *Renderer) parse(name string) (*template.Template, error) {
	set, err := r.source.LoadTemplateSet(name)
	if err != nil {
		if errors.Is(err, assets.ErrTemplateNotFound) {
			available, _ := r.source.ListTemplates()
			return nil, fmt.Errorf("%w%s", err, hints.ForTemplateNotFound(pageNames(available)))
		}
		return nil, err
	}

	tmpl, err := template.New(assets.LayoutTemplateName).Funcs(funcs).Parse(set.Layout)
	if err != nil {
		return nil, fmt.Errorf("%w: layout: %v", ErrTemplateParse, err)
	}
	if _, err := tmpl.New(set.Name).Parse(set.Page); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, set.Name, err)
	}
	if tmpl.Lookup("content") == nil {
		return nil, fmt.Errorf("%w: %s: no \"content\" block defined", ErrTemplateParse, set.Name)
	}
	return tmpl, nil
}

// pageNames drops the layout from a template listing.
func pageNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != assets.LayoutTemplateName {
			out = append(out, n)
		}
	}
	return out
}
