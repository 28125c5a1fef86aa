package pipeline

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// *[HTML]: Hyper Text Markup Language
	abbrDefinition = regexp.MustCompile(`^ {0,3}\*\[([^\]]+)\]:[ \t]*(.*?)[ \t]*$`)

	codeFence = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// Abbreviations maps an abbreviation to its expansion.
type Abbreviations map[string]string

// ExtractAbbreviations removes abbreviation definition lines from Markdown
// and returns them. Definitions inside fenced code blocks are left alone.
// A later definition of the same abbreviation replaces an earlier one.
func ExtractAbbreviations(content string) (string, Abbreviations) {
	lines := strings.Split(content, "\n")
	var (
		abbrs   Abbreviations
		fence   string
		removed bool
	)

	for i, line := range lines {
		if fence != "" {
			if isClosingFence(line, fence) {
				fence = ""
			}
			continue
		}
		if m := codeFence.FindStringSubmatch(line); m != nil {
			fence = m[1]
			continue
		}

		m := abbrDefinition.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if abbrs == nil {
			abbrs = make(Abbreviations)
		}
		abbrs[strings.TrimSpace(m[1])] = m[2]
		// The blank line ends the surrounding block, as a definition does.
		lines[i] = ""
		removed = true
	}

	if !removed {
		return content, nil
	}
	return strings.Join(lines, "\n"), abbrs
}

// isClosingFence reports whether line closes a fence opened with open: the
// same character, at least as long, nothing else but spaces.
func isClosingFence(line, open string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	trimmed = strings.TrimRight(trimmed, " \t")
	if len(trimmed) < len(open) {
		return false
	}
	return strings.Trim(trimmed, open[:1]) == ""
}

// ApplyAbbreviations wraps whole-word occurrences of each abbreviation in
// text nodes with <abbr title="...">. Text inside code, literal elements,
// and existing <abbr> elements is not touched.
func ApplyAbbreviations(htmlContent string, abbrs Abbreviations) (string, error) {
	if len(abbrs) == 0 {
		return htmlContent, nil
	}

	pattern := abbreviationPattern(abbrs)
	return transformHTML(htmlContent, func(root *html.Node) {
		wrapAbbreviations(root, pattern, abbrs)
	})
}

// abbreviationPattern matches any abbreviation, longest first so "HTML5"
// wins over "HTML".
func abbreviationPattern(abbrs Abbreviations) *regexp.Regexp {
	keys := make([]string, 0, len(abbrs))
	for k := range abbrs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

func wrapAbbreviations(n *html.Node, pattern *regexp.Regexp, abbrs Abbreviations) {
	if n.Type == html.ElementNode && (literalElements[n.DataAtom] || n.DataAtom == atom.Code || n.DataAtom == atom.Abbr) {
		return
	}
	if n.Type == html.TextNode {
		splitAbbreviations(n, pattern, abbrs)
		return
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		wrapAbbreviations(c, pattern, abbrs)
		c = next
	}
}

// splitAbbreviations replaces text node n with a run of text and <abbr>
// nodes. n is left untouched when nothing matches.
func splitAbbreviations(n *html.Node, pattern *regexp.Regexp, abbrs Abbreviations) {
	text := n.Data
	var (
		parts []*html.Node
		last  int
	)

	for _, m := range pattern.FindAllStringIndex(text, -1) {
		if !isWordBoundary(text, m[0], m[1]) {
			continue
		}
		if m[0] > last {
			parts = append(parts, &html.Node{Type: html.TextNode, Data: text[last:m[0]]})
		}
		word := text[m[0]:m[1]]
		abbr := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Abbr,
			Data:     "abbr",
			Attr:     []html.Attribute{{Key: "title", Val: abbrs[word]}},
		}
		abbr.AppendChild(&html.Node{Type: html.TextNode, Data: word})
		parts = append(parts, abbr)
		last = m[1]
	}

	if len(parts) == 0 {
		return
	}
	if last < len(text) {
		parts = append(parts, &html.Node{Type: html.TextNode, Data: text[last:]})
	}

	parent := n.Parent
	for _, p := range parts {
		parent.InsertBefore(p, n)
	}
	parent.RemoveChild(n)
}

// isWordBoundary reports whether text[start:end] is not glued to a letter,
// digit, or underscore on either side.
func isWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
