package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Mark placeholders use Unicode Private Use Area characters so they pass
// through goldmark untouched. They become <mark> tags after rendering.
const (
	MarkStartPlaceholder = "\uE000"
	MarkEndPlaceholder   = "\uE001"
)

var (
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// ==text==
	markPattern = regexp.MustCompile(`==(.+?)==`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor normalizes Markdown before goldmark sees it.
type CommonMarkPreprocessor struct {
	// Marks rewrites ==text== to mark placeholders.
	Marks bool
}

var _ MarkdownPreprocessor = (*CommonMarkPreprocessor)(nil)

// PreprocessMarkdown normalizes line endings and, when enabled, rewrites
// mark syntax. Blank lines are kept as written since they are significant
// inside fenced code.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	if p.Marks {
		content = convertMarks(content)
	}
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

func convertMarks(content string) string {
	return markPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
}

// ConvertMarkPlaceholders turns mark placeholders in rendered HTML into
// <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}
