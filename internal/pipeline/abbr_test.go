package pipeline

import (
	"testing"
)

// ---------------------------------------------------------------------------
// TestExtractAbbreviations - Definition line removal
// ---------------------------------------------------------------------------

func TestExtractAbbreviations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		wantContent string
		wantAbbrs   Abbreviations
	}{
		{
			name:        "single definition",
			input:       "The HTML spec.\n\n*[HTML]: Hyper Text Markup Language",
			wantContent: "The HTML spec.\n\n",
			wantAbbrs:   Abbreviations{"HTML": "Hyper Text Markup Language"},
		},
		{
			name:        "later definition wins",
			input:       "*[W3C]: first\n*[W3C]: World Wide Web Consortium\nW3C",
			wantContent: "\n\nW3C",
			wantAbbrs:   Abbreviations{"W3C": "World Wide Web Consortium"},
		},
		{
			name:        "definition inside fenced code is kept",
			input:       "```\n*[HTML]: not a definition\n```\n",
			wantContent: "```\n*[HTML]: not a definition\n```\n",
		},
		{
			name:        "definition after a closed fence",
			input:       "~~~~\ncode\n~~~~\n*[CSS]: Cascading Style Sheets",
			wantContent: "~~~~\ncode\n~~~~\n",
			wantAbbrs:   Abbreviations{"CSS": "Cascading Style Sheets"},
		},
		{
			name:        "no definitions",
			input:       "# Title\n\ntext",
			wantContent: "# Title\n\ntext",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			content, abbrs := ExtractAbbreviations(tt.input)
			if content != tt.wantContent {
				t.Errorf("content = %q, want %q", content, tt.wantContent)
			}
			if len(abbrs) != len(tt.wantAbbrs) {
				t.Fatalf("abbrs = %v, want %v", abbrs, tt.wantAbbrs)
			}
			for k, v := range tt.wantAbbrs {
				if abbrs[k] != v {
					t.Errorf("abbrs[%q] = %q, want %q", k, abbrs[k], v)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestApplyAbbreviations - <abbr> wrapping on the tree
// ---------------------------------------------------------------------------

func TestApplyAbbreviations(t *testing.T) {
	t.Parallel()

	abbrs := Abbreviations{
		"HTML":  "Hyper Text Markup Language",
		"HTML5": "HTML version 5",
		"C++":   "C plus plus",
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "whole words only",
			input: "<p>HTML and HTML5 in XHTML</p>",
			want:  `<p><abbr title="Hyper Text Markup Language">HTML</abbr> and <abbr title="HTML version 5">HTML5</abbr> in XHTML</p>`,
		},
		{
			name:  "code left alone",
			input: "<p><code>HTML</code> HTML</p>",
			want:  `<p><code>HTML</code> <abbr title="Hyper Text Markup Language">HTML</abbr></p>`,
		},
		{
			name:  "pre left alone",
			input: "<pre>HTML</pre>",
			want:  "<pre>HTML</pre>",
		},
		{
			name:  "punctuation in abbreviation",
			input: "<p>I like C++.</p>",
			want:  `<p>I like <abbr title="C plus plus">C++</abbr>.</p>`,
		},
		{
			name:  "nested inline",
			input: "<p><em>HTML</em></p>",
			want:  `<p><em><abbr title="Hyper Text Markup Language">HTML</abbr></em></p>`,
		},
		{
			name:  "no match",
			input: "<p>nothing here</p>",
			want:  "<p>nothing here</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ApplyAbbreviations(tt.input, abbrs)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyAbbreviations_Empty(t *testing.T) {
	t.Parallel()

	in := "<p>HTML</p>"
	got, err := ApplyAbbreviations(in, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != in {
		t.Errorf("got %q, want unchanged", got)
	}
}
