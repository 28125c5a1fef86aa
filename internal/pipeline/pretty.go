package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrPrettyPrint indicates the HTML could not be re-serialized.
var ErrPrettyPrint = errors.New("pretty print failed")

// indentUnit is added once per nesting level.
const indentUnit = " "

// voidElements have no closing tag.
var voidElements = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

// Prettifier re-serializes HTML with one node per line.
type Prettifier interface {
	Prettify(htmlContent string) (string, error)
}

// TreePrettifier indents HTML by tree depth: every tag and every non-blank
// text run goes on its own line, indented one space per level. Elements in
// literalElements are emitted verbatim on a single opening line so code
// blocks keep their exact whitespace. Whitespace-only text between tags is
// dropped, which makes the output a fixed point: prettifying it again
// yields the same string. Input is parsed by the HTML5 algorithm, so invalid
// nesting such as a <div> inside a <p> is restructured the way a browser
// would, which can leave an empty <p></p> behind.
type TreePrettifier struct{}

var _ Prettifier = (*TreePrettifier)(nil)

// Prettify parses htmlContent as a fragment or a full document and returns
// the indented serialization.
func (p *TreePrettifier) Prettify(htmlContent string) (string, error) {
	doc, _, err := parseHTML(htmlContent)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPrettyPrint, err)
	}

	var buf strings.Builder
	buf.Grow(len(htmlContent) + len(htmlContent)/4)
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := writeNode(&buf, c, 0); err != nil {
			return "", fmt.Errorf("%w: %v", ErrPrettyPrint, err)
		}
	}
	return buf.String(), nil
}

func writeNode(buf *strings.Builder, n *html.Node, depth int) error {
	indent := strings.Repeat(indentUnit, depth)

	switch n.Type {
	case html.DoctypeNode:
		buf.WriteString(indent)
		if err := html.Render(buf, n); err != nil {
			return err
		}
		buf.WriteByte('\n')

	case html.CommentNode:
		buf.WriteString(indent + "<!--" + n.Data + "-->\n")

	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return nil
		}
		buf.WriteString(indent + html.EscapeString(text) + "\n")

	case html.ElementNode:
		if literalElements[n.DataAtom] {
			buf.WriteString(indent)
			if err := html.Render(buf, n); err != nil {
				return err
			}
			buf.WriteByte('\n')
			return nil
		}

		buf.WriteString(indent)
		writeStartTag(buf, n)
		buf.WriteByte('\n')
		if voidElements[n.DataAtom] {
			return nil
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := writeNode(buf, c, depth+1); err != nil {
				return err
			}
		}
		buf.WriteString(indent + "</" + n.Data + ">\n")

	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := writeNode(buf, c, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeStartTag(buf *strings.Builder, n *html.Node) {
	buf.WriteByte('<')
	buf.WriteString(n.Data)
	for _, a := range n.Attr {
		buf.WriteByte(' ')
		if a.Namespace != "" {
			buf.WriteString(a.Namespace + ":")
		}
		buf.WriteString(a.Key)
		buf.WriteString(`="`)
		buf.WriteString(html.EscapeString(a.Val))
		buf.WriteByte('"')
	}
	if voidElements[n.DataAtom] {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
}
