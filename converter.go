package mdsite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/alnah/go-mdsite/internal/fileutil"
	"github.com/alnah/go-mdsite/internal/pipeline"
)

// OutputPrefix is prepended to derived output names by the standalone
// converter CLI.
const OutputPrefix = "output_"

// ExtensionConfigs maps an extension name to its own configuration.
type ExtensionConfigs = pipeline.ExtensionConfigs

// ExtraBundle names the default extension bundle.
const ExtraBundle = pipeline.ExtraBundle

// DefaultExtensions returns {"extra": {}}.
func DefaultExtensions() ExtensionConfigs {
	return pipeline.DefaultExtensions()
}

// Options configures a single conversion.
type Options struct {
	// OutputPath is the destination for ConvertFile. Empty derives
	// <dir>/<base>.html from the source path.
	OutputPath string
	// Pretty re-serializes the HTML with one node per line.
	Pretty bool
	// Standalone wraps the fragment in an HTML5 document.
	Standalone bool
	// Title of the standalone document. Falls back to the "title" front
	// matter field, then to "Document".
	Title string
	// BaseURL prefixes relative image and link references.
	BaseURL string
}

// DefaultOptions returns options with pretty printing enabled.
func DefaultOptions() Options {
	return Options{Pretty: true}
}

// Document is a rendered Markdown document.
type Document struct {
	HTML string
	// Meta holds front matter when the meta extension is enabled.
	Meta map[string]any
}

// Converter turns Markdown into HTML. It holds only its extension pipeline:
// no state derived from a document survives a call.
type Converter struct {
	extensions ExtensionConfigs
	renderer   pipeline.MarkdownRenderer
	prettifier pipeline.Prettifier
}

// Option configures a Converter.
type Option func(*Converter)

// WithExtensions replaces the default extension set.
func WithExtensions(configs ExtensionConfigs) Option {
	return func(c *Converter) {
		c.extensions = configs
	}
}

// NewConverter builds a Converter. Extension configuration is validated
// here, before any file is touched.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		extensions: DefaultExtensions(),
		prettifier: &pipeline.TreePrettifier{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.renderer == nil {
		renderer, err := pipeline.NewGoldmarkConverter(c.extensions)
		if err != nil {
			return nil, err
		}
		c.renderer = renderer
	}
	return c, nil
}

// Convert reads sourcePath and returns its HTML rendering.
// A missing, unreadable, or non-text source yields ErrFileAccess.
func (c *Converter) Convert(ctx context.Context, sourcePath string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	markdown, err := readSource(sourcePath)
	if err != nil {
		return "", err
	}

	doc, err := c.Render(ctx, markdown, opts)
	if err != nil {
		return "", err
	}
	return doc.HTML, nil
}

// ConvertFile converts sourcePath and writes the HTML to opts.OutputPath,
// or to OutputPath(sourcePath, "") when empty. An existing destination is
// replaced. Nothing is written when the source cannot be read. Returns the
// path written.
func (c *Converter) ConvertFile(ctx context.Context, sourcePath string, opts Options) (string, error) {
	html, err := c.Convert(ctx, sourcePath, opts)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	outPath := opts.OutputPath
	if outPath == "" {
		outPath = OutputPath(sourcePath, "")
	}
	if err := fileutil.ReplaceFile(outPath, []byte(html)); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	return outPath, nil
}

// ConvertString converts Markdown held in memory.
func (c *Converter) ConvertString(ctx context.Context, markdown string, opts Options) (string, error) {
	doc, err := c.Render(ctx, markdown, opts)
	if err != nil {
		return "", err
	}
	return doc.HTML, nil
}

// Render converts Markdown held in memory and returns the HTML with any
// front matter. Recovers from internal panics so a malformed document
// cannot take down a server.
func (c *Converter) Render(ctx context.Context, markdown string, opts Options) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: internal error: %v", ErrHTMLConversion, r)
		}
	}()

	res, err := c.renderer.Render(ctx, markdown)
	if err != nil {
		return nil, err
	}
	html := res.HTML

	if opts.BaseURL != "" {
		html, err = pipeline.RewriteRelativeURLs(html, opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: rewriting references: %v", ErrHTMLConversion, err)
		}
	}

	if opts.Standalone {
		html = pipeline.WrapDocument(documentTitle(opts.Title, res.Meta), html)
	}

	if opts.Pretty {
		html, err = c.prettifier.Prettify(html)
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Document{HTML: html, Meta: res.Meta}, nil
}

// OutputPath derives the HTML destination for sourcePath: the same
// directory, the base name without its last extension, prefixed with
// prefix, and a .html extension.
//
//	OutputPath("docs/notes.md", "")        -> docs/notes.html
//	OutputPath("docs/notes.md", "output_") -> docs/output_notes.html
func OutputPath(sourcePath, prefix string) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		// Dotfiles such as ".md" have no extension to strip.
		stem = base
	}
	return filepath.Join(filepath.Dir(sourcePath), prefix+stem+".html")
}

func readSource(sourcePath string) (string, error) {
	data, err := os.ReadFile(sourcePath) // #nosec G304 -- reading the caller's document is the point
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", ErrFileAccess, sourcePath)
	}
	return string(data), nil
}

func documentTitle(title string, meta map[string]any) string {
	if title != "" {
		return title
	}
	if t, ok := meta["title"].(string); ok {
		return t
	}
	return ""
}

// defaultConverter backs the package-level functions with the extra bundle.
var defaultConverter = sync.OnceValues(func() (*Converter, error) {
	return NewConverter()
})

// Convert reads sourcePath and returns its HTML rendering using the default
// extension set.
func Convert(ctx context.Context, sourcePath string, opts Options) (string, error) {
	c, err := defaultConverter()
	if err != nil {
		return "", err
	}
	return c.Convert(ctx, sourcePath, opts)
}

// ConvertFile converts sourcePath with the default extension set and writes
// the result. See Converter.ConvertFile.
func ConvertFile(ctx context.Context, sourcePath string, opts Options) (string, error) {
	c, err := defaultConverter()
	if err != nil {
		return "", err
	}
	return c.ConvertFile(ctx, sourcePath, opts)
}

// ConvertString converts Markdown held in memory with the default extension set.
func ConvertString(ctx context.Context, markdown string, opts Options) (string, error) {
	c, err := defaultConverter()
	if err != nil {
		return "", err
	}
	return c.ConvertString(ctx, markdown, opts)
}
