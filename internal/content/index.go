package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches every Markdown file below the posts directory.
const DefaultPattern = "**/*.md"

// Index is an immutable snapshot of the posts directory, sorted newest
// first. Undated posts sort last, ties break on slug.
type Index struct {
	posts  []Post
	bySlug map[string]int
}

// BuildIndex parses every file under dir matching pattern. A missing
// directory yields an empty index.
func BuildIndex(dir, pattern string) (*Index, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	idx := &Index{bySlug: make(map[string]int)}

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading posts directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("posts directory %s is not a directory", dir)
	}

	var paths []string
	err = doublestar.GlobWalk(os.DirFS(dir), pattern, func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		paths = append(paths, filepath.Join(dir, filepath.FromSlash(path)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("matching posts: %w", err)
	}

	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		post, err := ParsePost(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[post.Slug]; ok {
			return nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateSlug, post.Slug, prev, path)
		}
		seen[post.Slug] = path
		idx.posts = append(idx.posts, post)
	}

	sort.SliceStable(idx.posts, func(i, j int) bool {
		a, b := idx.posts[i], idx.posts[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Slug < b.Slug
	})
	for i, p := range idx.posts {
		idx.bySlug[p.Slug] = i
	}
	return idx, nil
}

// List returns published posts, newest first. Drafts are hidden.
func (i *Index) List() []Post {
	out := make([]Post, 0, len(i.posts))
	for _, p := range i.posts {
		if !p.Draft {
			out = append(out, p)
		}
	}
	return out
}

// All returns every post including drafts, newest first.
func (i *Index) All() []Post {
	out := make([]Post, len(i.posts))
	copy(out, i.posts)
	return out
}

// Get returns the published post with the given slug.
func (i *Index) Get(slug string) (Post, error) {
	n, ok := i.bySlug[slug]
	if !ok || i.posts[n].Draft {
		return Post{}, fmt.Errorf("%w: %q", ErrPostNotFound, slug)
	}
	return i.posts[n], nil
}

// Len returns the number of posts including drafts.
func (i *Index) Len() int {
	return len(i.posts)
}
