package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alnah/go-mdsite/internal/dateutil"
	"github.com/alnah/go-mdsite/internal/fileutil"
	"github.com/alnah/go-mdsite/internal/yamlutil"
)

// DirPerm is used when Save creates the posts directory.
const DirPerm = 0o755

// Store serves the current index of a posts directory and writes uploads
// into it. It is safe for concurrent use.
type Store struct {
	dir     string
	pattern string
	now     func() time.Time

	mu    sync.RWMutex
	index *Index
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the time source used for "auto" dates.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore indexes dir and returns a Store over it.
func NewStore(dir, pattern string, opts ...StoreOption) (*Store, error) {
	s := &Store{dir: dir, pattern: pattern, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the posts directory.
func (s *Store) Dir() string {
	return s.dir
}

// Reload rebuilds the index from disk.
func (s *Store) Reload() error {
	idx, err := BuildIndex(s.dir, s.pattern)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()
	return nil
}

// Index returns the current snapshot.
func (s *Store) Index() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// List returns published posts, newest first.
func (s *Store) List() []Post {
	return s.Index().List()
}

// Get returns the published post with the given slug.
func (s *Store) Get(slug string) (Post, error) {
	return s.Index().Get(slug)
}

// Upload is a new post submitted through the admin endpoint or the CLI.
type Upload struct {
	Title   string
	Slug    string
	Date    string // "auto" or a date dateutil.ParseDate accepts; empty means "auto"
	Summary string
	Draft   bool
	Content string // Markdown; any front matter it carries is replaced
	// Overwrite allows replacing an existing post with the same slug.
	Overwrite bool
}

// Save writes the upload to <dir>/<slug>.md with front matter built from
// its fields, then reloads the index. An existing file is only replaced
// when Overwrite is set.
func (s *Store) Save(u Upload) (Post, error) {
	if u.Slug == "" {
		u.Slug = Slugify(u.Title)
	}
	if err := ValidateSlug(u.Slug); err != nil {
		return Post{}, err
	}
	if u.Title == "" {
		return Post{}, fmt.Errorf("%w: title is required", ErrInvalidPost)
	}

	date, err := s.resolveDate(u.Date)
	if err != nil {
		return Post{}, err
	}

	path := filepath.Join(s.dir, u.Slug+".md")

	// Uploads are serialized under the write lock.
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.index.bySlug[u.Slug]; ok && s.index.posts[existing].Path != path {
		return Post{}, fmt.Errorf("%w: %q is defined by %s", ErrPostExists, u.Slug, s.index.posts[existing].Path)
	}
	if _, err := os.Stat(path); err == nil {
		if !u.Overwrite {
			return Post{}, fmt.Errorf("%w: %s", ErrPostExists, path)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Post{}, fmt.Errorf("checking %s: %w", path, err)
	}

	_, body := yamlutil.SplitFrontMatter([]byte(u.Content))
	data, err := yamlutil.JoinFrontMatter(frontMatter{
		Title:   u.Title,
		Date:    date,
		Summary: u.Summary,
		Draft:   u.Draft,
	}, string(body))
	if err != nil {
		return Post{}, fmt.Errorf("%w: %v", ErrInvalidPost, err)
	}

	if err := os.MkdirAll(s.dir, DirPerm); err != nil {
		return Post{}, fmt.Errorf("creating posts directory: %w", err)
	}
	if err := fileutil.ReplaceFile(path, data); err != nil {
		return Post{}, err
	}

	idx, err := BuildIndex(s.dir, s.pattern)
	if err != nil {
		return Post{}, err
	}
	s.index = idx

	post, err := parsePost(path, data)
	if err != nil {
		return Post{}, err
	}
	return post, nil
}

// resolveDate expands "auto" values and normalizes literal dates so the
// stored front matter always parses back.
func (s *Store) resolveDate(value string) (string, error) {
	if value == "" {
		value = "auto"
	}
	resolved, err := dateutil.ResolveDate(value, s.now())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPost, err)
	}
	t, err := dateutil.ParseDate(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPost, err)
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(time.DateOnly), nil
	}
	return t.Format(time.RFC3339), nil
}
