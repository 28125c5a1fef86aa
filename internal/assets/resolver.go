package assets

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/alnah/go-mdsite/internal/fileutil"
)

// AssetResolver combines a site's own assets with the embedded theme.
// Each lookup tries the custom loader first and falls back to the embedded
// one only when the asset is not found there.
type AssetResolver struct {
	custom   AssetLoader // nil if no custom path configured
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver.
// If customBasePath is empty, only embedded assets are used.
// Returns error if customBasePath is set but invalid.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadStyle loads a CSS style, trying the custom loader first.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.loadWithFallback(func(loader AssetLoader) (string, error) {
		return loader.LoadStyle(name)
	})
}

// LoadTemplate loads a page template, trying the custom loader first.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.loadWithFallback(func(loader AssetLoader) (string, error) {
		return loader.LoadTemplate(name)
	})
}

// ListTemplates returns the union of custom and embedded template names.
func (r *AssetResolver) ListTemplates() ([]string, error) {
	names, err := r.embedded.ListTemplates()
	if err != nil {
		return nil, err
	}
	if r.custom == nil {
		return names, nil
	}

	custom, err := r.custom.ListTemplates()
	if err != nil {
		return nil, err
	}
	names = append(names, custom...)
	slices.Sort(names)
	return slices.Compact(names), nil
}

// LoadTemplateSet loads the layout and the named page. Both are resolved
// independently, so either may come from the custom directory.
func (r *AssetResolver) LoadTemplateSet(name string) (*TemplateSet, error) {
	return loadTemplateSet(r, name)
}

// ResolveStyle returns CSS for a style name or, when nameOrPath looks like
// a file path, the content of that file.
func (r *AssetResolver) ResolveStyle(nameOrPath string) (string, error) {
	if nameOrPath == "" {
		return "", nil
	}
	if !fileutil.IsFilePath(nameOrPath) {
		return r.LoadStyle(nameOrPath)
	}

	content, err := os.ReadFile(nameOrPath) // #nosec G304 -- style path comes from site config
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrStyleNotFound, nameOrPath)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(content), nil
}

// loadWithFallback implements the custom-first, fallback-to-embedded logic.
func (r *AssetResolver) loadWithFallback(loadFn func(AssetLoader) (string, error)) (string, error) {
	if r.custom == nil {
		return loadFn(r.embedded)
	}

	content, err := loadFn(r.custom)
	if err == nil {
		return content, nil
	}

	// Only fall back for "not found" errors, not validation or I/O errors
	if !isNotFoundError(err) {
		return "", err
	}

	return loadFn(r.embedded)
}

// isNotFoundError checks if the error indicates the asset was not found.
func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) ||
		errors.Is(err, ErrTemplateNotFound)
}

// HasCustomLoader returns true if a custom asset loader is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
