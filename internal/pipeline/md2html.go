package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdhtml "html"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

var (
	// ErrHTMLConversion indicates HTML conversion failed.
	ErrHTMLConversion = errors.New("HTML conversion failed")
	// ErrFrontMatter indicates a malformed YAML front matter block.
	ErrFrontMatter = errors.New("invalid front matter")
)

// htmlTemplate wraps a rendered fragment in a complete HTML5 document.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// WrapDocument embeds an HTML fragment in a minimal HTML5 document.
func WrapDocument(title, body string) string {
	if title == "" {
		title = "Document"
	}
	return fmt.Sprintf(htmlTemplate, stdhtml.EscapeString(title), body)
}

// Result is the output of a Markdown render.
type Result struct {
	// HTML is the rendered fragment.
	HTML string
	// Meta holds front matter when the meta extension is enabled.
	Meta map[string]any
}

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// MarkdownRenderer renders Markdown and exposes its front matter.
type MarkdownRenderer interface {
	Render(ctx context.Context, content string) (*Result, error)
}

// GoldmarkConverter converts Markdown to HTML using goldmark plus the
// post-render passes its extension set enables. It holds no per-document
// state and is safe for concurrent use.
type GoldmarkConverter struct {
	md           goldmark.Markdown
	preprocessor MarkdownPreprocessor
	features     features
}

var (
	_ HTMLConverter    = (*GoldmarkConverter)(nil)
	_ MarkdownRenderer = (*GoldmarkConverter)(nil)
)

// NewGoldmarkConverter builds a converter for the given extension set.
// A nil set selects DefaultExtensions; an empty non-nil set renders plain
// CommonMark.
func NewGoldmarkConverter(configs ExtensionConfigs) (*GoldmarkConverter, error) {
	if configs == nil {
		configs = DefaultExtensions()
	}
	b, err := configs.build()
	if err != nil {
		return nil, err
	}

	md := goldmark.New(
		goldmark.WithExtensions(b.extenders...),
		goldmark.WithParserOptions(b.parserOpts...),
		goldmark.WithRendererOptions(b.rendererOpts...),
	)
	return &GoldmarkConverter{
		md:           md,
		preprocessor: &CommonMarkPreprocessor{Marks: b.features.marks},
		features:     b.features,
	}, nil
}

// ToHTML converts Markdown content to an HTML fragment.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	res, err := c.Render(ctx, content)
	if err != nil {
		return "", err
	}
	return res.HTML, nil
}

// Render converts Markdown content to an HTML fragment and collects front
// matter. Goldmark has no context support, so the conversion runs in a
// goroutine and the caller stops waiting when ctx is done. A panic inside
// goldmark or an extension is returned as ErrHTMLConversion.
func (c *GoldmarkConverter) Render(ctx context.Context, content string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content = c.preprocessor.PreprocessMarkdown(ctx, content)

	var abbrs Abbreviations
	if c.features.abbreviations {
		content, abbrs = ExtractAbbreviations(content)
	}

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: internal error: %v", ErrHTMLConversion, r)}
			}
		}()

		pctx := parser.NewContext()
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf, parser.WithContext(pctx)); err != nil {
			done <- outcome{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}

		res := &Result{HTML: buf.String()}
		if c.features.meta {
			items, err := meta.TryGet(pctx)
			if err != nil {
				done <- outcome{err: fmt.Errorf("%w: %v", ErrFrontMatter, err)}
				return
			}
			res.Meta = items
		}
		done <- outcome{res: res}
	}()

	var res *Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-done:
		if o.err != nil {
			return nil, o.err
		}
		res = o.res
	}

	return c.postProcess(res, abbrs)
}

func (c *GoldmarkConverter) postProcess(res *Result, abbrs Abbreviations) (*Result, error) {
	if c.features.marks {
		res.HTML = ConvertMarkPlaceholders(res.HTML)
	}
	if len(abbrs) > 0 {
		out, err := ApplyAbbreviations(res.HTML, abbrs)
		if err != nil {
			return nil, fmt.Errorf("%w: abbreviations: %v", ErrHTMLConversion, err)
		}
		res.HTML = out
	}
	if c.features.sidenotes {
		res.HTML = ProcessSidenotes(res.HTML)
	}
	return res, nil
}
