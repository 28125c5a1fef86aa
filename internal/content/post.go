// Package content indexes the Markdown posts and pages a site is built from.
// Posts carry YAML front matter; the files on disk are the only store.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alnah/go-mdsite/internal/dateutil"
	"github.com/alnah/go-mdsite/internal/yamlutil"
)

// MaxSlugLength caps slugs, which double as file names.
const MaxSlugLength = 100

// Post describes one published Markdown file.
type Post struct {
	Title   string
	Slug    string
	Date    time.Time
	Summary string
	Draft   bool
	Path    string // Markdown source on disk
}

// URL returns the post's path on the site.
func (p Post) URL() string {
	return "/blog/" + p.Slug
}

// FormatDate renders the post date with a dateutil preset or token format.
// An undated post renders as the empty string.
func (p Post) FormatDate(format string) string {
	if p.Date.IsZero() {
		return ""
	}
	s, err := dateutil.Format(p.Date, format)
	if err != nil {
		return p.Date.Format(time.DateOnly)
	}
	return s
}

// frontMatter is the YAML block at the top of a post.
type frontMatter struct {
	Title   string `yaml:"title"`
	Slug    string `yaml:"slug,omitempty"`
	Date    string `yaml:"date,omitempty"`
	Summary string `yaml:"summary,omitempty"`
	Draft   bool   `yaml:"draft,omitempty"`
}

// ValidateSlug accepts lowercase ASCII letters, digits and inner hyphens or
// underscores. Slugs become file names and URL segments, so separators,
// dots and spaces are rejected.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSlug)
	}
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidSlug, MaxSlugLength)
	}
	for i, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case (r == '-' || r == '_') && i > 0 && i < len(slug)-1:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
		}
	}
	return nil
}

// Slugify lowercases s and replaces every run of other characters with a
// single hyphen. The result may still fail ValidateSlug when s has no
// letters or digits.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	out := b.String()
	if len(out) > MaxSlugLength {
		out = strings.TrimRight(out[:MaxSlugLength], "-")
	}
	return out
}

// ParsePost reads front matter from the Markdown file at path.
// The slug defaults to the file name without extension and the title to
// the slug.
func ParsePost(path string) (Post, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the posts directory glob
	if err != nil {
		return Post{}, fmt.Errorf("reading post: %w", err)
	}
	return parsePost(path, data)
}

func parsePost(path string, data []byte) (Post, error) {
	if !utf8.Valid(data) {
		return Post{}, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidPost, path)
	}

	base := filepath.Base(path)
	post := Post{
		Slug: strings.TrimSuffix(base, filepath.Ext(base)),
		Path: path,
	}

	header, _ := yamlutil.SplitFrontMatter(data)
	if len(header) > 0 {
		var fm frontMatter
		if err := yamlutil.Unmarshal(header, &fm); err != nil {
			return Post{}, fmt.Errorf("%w: %s: front matter: %v", ErrInvalidPost, path, err)
		}
		if fm.Slug != "" {
			post.Slug = fm.Slug
		}
		post.Title = fm.Title
		post.Summary = fm.Summary
		post.Draft = fm.Draft

		if fm.Date != "" {
			date, err := dateutil.ParseDate(fm.Date)
			if err != nil {
				return Post{}, fmt.Errorf("%w: %s: %v", ErrInvalidPost, path, err)
			}
			post.Date = date
		}
	}

	if err := ValidateSlug(post.Slug); err != nil {
		return Post{}, fmt.Errorf("%w: %s: %v", ErrInvalidPost, path, err)
	}
	if post.Title == "" {
		post.Title = post.Slug
	}
	return post, nil
}

// ReadBody returns the post's Markdown without its front matter.
func ReadBody(p Post) (string, error) {
	data, err := os.ReadFile(p.Path) // #nosec G304 -- path comes from the index
	if err != nil {
		return "", fmt.Errorf("reading post %q: %w", p.Slug, err)
	}
	_, body := yamlutil.SplitFrontMatter(data)
	return string(body), nil
}
