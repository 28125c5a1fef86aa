package content

import (
	"errors"
	"strings"
	"testing"
)

func TestImportHTML(t *testing.T) {
	t.Parallel()

	page := `<!DOCTYPE html>
<html><head><title>About Me</title><style>body{}</style></head>
<body>
<h1>Hello</h1>
<p>I write <strong>software</strong>. See <a href="/projects">projects</a>.</p>
<ul><li>one</li><li>two</li></ul>
</body></html>`

	got, err := ImportHTML(strings.NewReader(page), "")
	if err != nil {
		t.Fatalf("ImportHTML() error = %v", err)
	}
	if got.Title != "About Me" {
		t.Errorf("Title = %q, want About Me", got.Title)
	}
	for _, want := range []string{"# Hello", "**software**", "[projects](/projects)", "- one"} {
		if !strings.Contains(got.Markdown, want) {
			t.Errorf("Markdown missing %q:\n%s", want, got.Markdown)
		}
	}
	if strings.Contains(got.Markdown, "body{}") {
		t.Errorf("style content leaked into Markdown:\n%s", got.Markdown)
	}
}

func TestImportHTML_TitleFromHeading(t *testing.T) {
	t.Parallel()

	got, err := ImportHTML(strings.NewReader("<h1>Only <em>Heading</em></h1><p>x</p>"), "")
	if err != nil {
		t.Fatalf("ImportHTML() error = %v", err)
	}
	if got.Title != "Only Heading" {
		t.Errorf("Title = %q, want Only Heading", got.Title)
	}
}

func TestImportHTML_TooLarge(t *testing.T) {
	t.Parallel()

	big := strings.NewReader(strings.Repeat("a", MaxImportSize+1))
	if _, err := ImportHTML(big, ""); !errors.Is(err, ErrImport) {
		t.Errorf("ImportHTML() error = %v, want ErrImport", err)
	}
}
