package assets

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

func writeAsset(t *testing.T, base, rel, content string) {
	t.Helper()
	path := filepath.Join(base, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	t.Run("valid directory", func(t *testing.T) {
		t.Parallel()

		loader, err := NewFilesystemLoader(t.TempDir())
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		if loader == nil {
			t.Fatal("NewFilesystemLoader() returned nil")
		}
	})

	t.Run("empty path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader(\"\") error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("nonexistent directory returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("/nonexistent/path/abc123xyz")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("file instead of directory returns error", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		writeAsset(t, tmpDir, "file.txt", "test")

		_, err := NewFilesystemLoader(filepath.Join(tmpDir, "file.txt"))
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestFilesystemLoader_Load(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "styles/site.css", "body { color: red; }")
	writeAsset(t, tmpDir, "templates/home.html", `{{define "content"}}custom{{end}}`)

	loader, err := NewFilesystemLoader(tmpDir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	t.Run("loads existing style", func(t *testing.T) {
		t.Parallel()
		got, err := loader.LoadStyle("site")
		if err != nil {
			t.Fatalf("LoadStyle() error = %v", err)
		}
		if got != "body { color: red; }" {
			t.Errorf("LoadStyle() = %q", got)
		}
	})

	t.Run("loads existing template", func(t *testing.T) {
		t.Parallel()
		got, err := loader.LoadTemplate("home")
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if got != `{{define "content"}}custom{{end}}` {
			t.Errorf("LoadTemplate() = %q", got)
		}
	})

	t.Run("returns ErrStyleNotFound for nonexistent", func(t *testing.T) {
		t.Parallel()
		if _, err := loader.LoadStyle("missing"); !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("LoadStyle() error = %v, want ErrStyleNotFound", err)
		}
	})

	t.Run("returns ErrTemplateNotFound for nonexistent", func(t *testing.T) {
		t.Parallel()
		if _, err := loader.LoadTemplate("missing"); !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("LoadTemplate() error = %v, want ErrTemplateNotFound", err)
		}
	})

	t.Run("returns ErrInvalidAssetName for invalid name", func(t *testing.T) {
		t.Parallel()
		if _, err := loader.LoadTemplate("../home"); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadTemplate() error = %v, want ErrInvalidAssetName", err)
		}
	})
}

func TestFilesystemLoader_ListTemplates(t *testing.T) {
	t.Parallel()

	t.Run("lists html files", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		writeAsset(t, tmpDir, "templates/post.html", "")
		writeAsset(t, tmpDir, "templates/base.html", "")
		writeAsset(t, tmpDir, "templates/notes.txt", "")

		loader, err := NewFilesystemLoader(tmpDir)
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		names, err := loader.ListTemplates()
		if err != nil {
			t.Fatalf("ListTemplates() error = %v", err)
		}
		if !slices.Equal(names, []string{"base", "post"}) {
			t.Errorf("ListTemplates() = %v, want [base post]", names)
		}
	})

	t.Run("missing templates directory lists nothing", func(t *testing.T) {
		t.Parallel()

		loader, err := NewFilesystemLoader(t.TempDir())
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		names, err := loader.ListTemplates()
		if err != nil || len(names) != 0 {
			t.Errorf("ListTemplates() = %v, %v; want empty, nil", names, err)
		}
	})
}

func TestFilesystemLoader_PathContainment(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on Windows")
	}

	base := t.TempDir()
	outside := t.TempDir()
	writeAsset(t, outside, "secret.css", "secret")
	if err := os.MkdirAll(filepath.Join(base, "styles"), 0755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "secret.css"), filepath.Join(base, "styles", "escape.css")); err != nil {
		t.Fatalf("setup symlink: %v", err)
	}

	loader, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	if _, err := loader.LoadStyle("escape"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle(escape) error = %v, want ErrPathTraversal", err)
	}
}
