package pipeline

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rewriteFunc maps a relative reference to its replacement. ok is false
// when the reference must be left as written.
type rewriteFunc func(ref string) (string, bool)

// RewriteRelativePaths converts relative image and link paths to absolute
// file:// URLs under sourceDir. Used when a page is handed to headless
// Chrome from a temp file. If sourceDir is empty, returns the HTML unchanged.
//
// Rewrites img[src] and a[href]. Absolute paths, URLs, anchors, and paths
// escaping sourceDir are left alone.
func RewriteRelativePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	return rewriteReferences(htmlContent, func(ref string) (string, bool) {
		absPath := filepath.Join(absSourceDir, filepath.FromSlash(ref))
		if !isPathUnderDir(absPath, absSourceDir) {
			return "", false
		}
		return pathToFileURL(absPath), true
	})
}

// RewriteRelativeURLs prefixes relative image and link references with
// base, so a post's "img/chart.png" is served from "/static/posts/img/chart.png".
// References that would climb above base are left alone. If base is empty,
// returns the HTML unchanged.
func RewriteRelativeURLs(htmlContent, base string) (string, error) {
	if base == "" {
		return htmlContent, nil
	}
	cleanBase := path.Clean("/" + strings.Trim(base, "/"))

	return rewriteReferences(htmlContent, func(ref string) (string, bool) {
		refPath, suffix := splitURLSuffix(ref)
		joined := path.Join(cleanBase, refPath)
		if cleanBase != "/" && joined != cleanBase && !strings.HasPrefix(joined, cleanBase+"/") {
			return "", false
		}
		return joined + suffix, true
	})
}

func rewriteReferences(htmlContent string, fn rewriteFunc) (string, error) {
	return transformHTML(htmlContent, func(root *html.Node) {
		rewriteNode(root, fn)
	})
}

// rewriteNode traverses the DOM and rewrites relative references.
func rewriteNode(n *html.Node, fn rewriteFunc) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", fn)
		case atom.A:
			rewriteAttr(n, "href", fn)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, fn)
	}
}

func rewriteAttr(n *html.Node, attrName string, fn rewriteFunc) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativePath(attr.Val) {
			continue
		}
		if val, ok := fn(attr.Val); ok {
			n.Attr[i].Val = val
		}
	}
}

// isRelativePath returns true if the reference should be rewritten.
func isRelativePath(ref string) bool {
	if ref == "" {
		return false
	}

	// URLs with a scheme, protocol-relative URLs, and anchors
	if strings.Contains(ref, "://") ||
		strings.HasPrefix(ref, "data:") ||
		strings.HasPrefix(ref, "mailto:") ||
		strings.HasPrefix(ref, "tel:") ||
		strings.HasPrefix(ref, "//") ||
		strings.HasPrefix(ref, "#") {
		return false
	}

	// Site-absolute URLs and absolute file paths
	if strings.HasPrefix(ref, "/") || filepath.IsAbs(ref) {
		return false
	}

	return true
}

// splitURLSuffix separates a reference into its path and its ?query or
// #fragment suffix.
func splitURLSuffix(ref string) (string, string) {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
