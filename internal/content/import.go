package content

import (
	"fmt"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxImportSize caps HTML read by ImportHTML.
const MaxImportSize = 10 << 20

// Imported is a legacy HTML page converted to Markdown.
type Imported struct {
	Title    string
	Markdown string
}

// ImportHTML converts an HTML page to Markdown for migration into the posts
// directory. The title comes from <title>, else from the first <h1>.
// Relative links are resolved against domain when it is not empty.
func ImportHTML(r io.Reader, domain string) (*Imported, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading: %v", ErrImport, err)
	}
	if len(data) > MaxImportSize {
		return nil, fmt.Errorf("%w: input exceeds %d bytes", ErrImport, MaxImportSize)
	}

	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing: %v", ErrImport, err)
	}

	var opts []converter.ConvertOptionFunc
	if domain != "" {
		opts = append(opts, converter.WithDomain(domain))
	}
	markdown, err := htmltomarkdown.ConvertString(string(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImport, err)
	}

	return &Imported{
		Title:    pageTitle(doc),
		Markdown: strings.TrimSpace(markdown) + "\n",
	}, nil
}

func pageTitle(doc *html.Node) string {
	if n := findElement(doc, atom.Title); n != nil {
		if t := strings.TrimSpace(textContent(n)); t != "" {
			return t
		}
	}
	if n := findElement(doc, atom.H1); n != nil {
		return strings.TrimSpace(textContent(n))
	}
	return ""
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
