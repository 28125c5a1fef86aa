package assets

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses embedded only", func(t *testing.T) {
		t.Parallel()

		resolver, err := NewAssetResolver("")
		if err != nil {
			t.Fatalf("NewAssetResolver(\"\") error = %v", err)
		}
		if resolver.HasCustomLoader() {
			t.Error("expected no custom loader for empty path")
		}
	})

	t.Run("valid custom path", func(t *testing.T) {
		t.Parallel()

		resolver, err := NewAssetResolver(t.TempDir())
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}
		if !resolver.HasCustomLoader() {
			t.Error("expected custom loader for valid path")
		}
	})

	t.Run("invalid custom path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewAssetResolver("/nonexistent/path/abc123xyz")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewAssetResolver() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestAssetResolver_Fallback(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "templates/base.html", `<main>{{template "content" .}}</main>`)
	writeAsset(t, tmpDir, "templates/gallery.html", `{{define "content"}}gallery{{end}}`)
	writeAsset(t, tmpDir, "styles/default.css", "custom")

	resolver, err := NewAssetResolver(tmpDir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	t.Run("custom style wins", func(t *testing.T) {
		t.Parallel()
		got, err := resolver.LoadStyle("default")
		if err != nil || got != "custom" {
			t.Errorf("LoadStyle(default) = %q, %v; want custom", got, err)
		}
	})

	t.Run("custom layout with embedded page", func(t *testing.T) {
		t.Parallel()
		ts, err := resolver.LoadTemplateSet(TemplatePost)
		if err != nil {
			t.Fatalf("LoadTemplateSet(post) error = %v", err)
		}
		if ts.Layout != `<main>{{template "content" .}}</main>` {
			t.Errorf("Layout = %q, want custom layout", ts.Layout)
		}
		if !strings.Contains(ts.Page, ".Post.Title") {
			t.Errorf("Page should come from the embedded post template, got %q", ts.Page)
		}
	})

	t.Run("custom-only page", func(t *testing.T) {
		t.Parallel()
		ts, err := resolver.LoadTemplateSet("gallery")
		if err != nil {
			t.Fatalf("LoadTemplateSet(gallery) error = %v", err)
		}
		if !strings.Contains(ts.Page, "gallery") {
			t.Errorf("Page = %q", ts.Page)
		}
	})

	t.Run("lists union of templates", func(t *testing.T) {
		t.Parallel()
		names, err := resolver.ListTemplates()
		if err != nil {
			t.Fatalf("ListTemplates() error = %v", err)
		}
		if !slices.Contains(names, "gallery") || !slices.Contains(names, TemplateResume) {
			t.Errorf("ListTemplates() = %v, want custom and embedded names", names)
		}
		if n := len(slices.Compact(slices.Clone(names))); n != len(names) {
			t.Errorf("ListTemplates() = %v has duplicates", names)
		}
	})

	t.Run("missing everywhere", func(t *testing.T) {
		t.Parallel()
		if _, err := resolver.LoadTemplate("missing"); !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("LoadTemplate(missing) error = %v, want ErrTemplateNotFound", err)
		}
	})

	t.Run("invalid name does not fall back", func(t *testing.T) {
		t.Parallel()
		if _, err := resolver.LoadStyle("../default"); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadStyle() error = %v, want ErrInvalidAssetName", err)
		}
	})
}

// pagesOnlyLoader serves page templates but no layout.
type pagesOnlyLoader struct{}

func (pagesOnlyLoader) LoadStyle(name string) (string, error) { return "", ErrStyleNotFound }
func (pagesOnlyLoader) ListTemplates() ([]string, error)       { return []string{"post"}, nil }
func (pagesOnlyLoader) LoadTemplate(name string) (string, error) {
	if name == "post" {
		return `{{define "content"}}{{end}}`, nil
	}
	return "", ErrTemplateNotFound
}

func TestLoadTemplateSet_MissingLayout(t *testing.T) {
	t.Parallel()

	_, err := loadTemplateSet(pagesOnlyLoader{}, "post")
	if !errors.Is(err, ErrLayoutNotFound) {
		t.Errorf("loadTemplateSet() error = %v, want ErrLayoutNotFound", err)
	}

	other := errors.New("boom")
	if got := wrapLayoutError(other); got != other {
		t.Errorf("wrapLayoutError(other) = %v, want it unchanged", got)
	}
}

func TestAssetResolver_ResolveStyle(t *testing.T) {
	t.Parallel()

	resolver, err := NewAssetResolver("")
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	t.Run("empty selects no CSS", func(t *testing.T) {
		t.Parallel()
		got, err := resolver.ResolveStyle("")
		if err != nil || got != "" {
			t.Errorf("ResolveStyle(\"\") = %q, %v", got, err)
		}
	})

	t.Run("name loads embedded", func(t *testing.T) {
		t.Parallel()
		got, err := resolver.ResolveStyle("default")
		if err != nil || !strings.Contains(got, "font-family") {
			t.Errorf("ResolveStyle(default) = %q, %v", got, err)
		}
	})

	t.Run("path reads file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "site.css")
		if err := os.WriteFile(path, []byte("p { margin: 0; }"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		got, err := resolver.ResolveStyle(path)
		if err != nil || got != "p { margin: 0; }" {
			t.Errorf("ResolveStyle(path) = %q, %v", got, err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()
		_, err := resolver.ResolveStyle(filepath.Join(t.TempDir(), "none.css"))
		if !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("ResolveStyle(missing) error = %v, want ErrStyleNotFound", err)
		}
	})
}
