package pipeline

import (
	"strings"
	"testing"
)

func TestProcessSidenotes(t *testing.T) {
	t.Parallel()

	t.Run("numbers notes in order", func(t *testing.T) {
		t.Parallel()

		in := "<p>One(:sidenote first sidenote:) two(:sidenote second sidenote:)</p>"
		got := ProcessSidenotes(in)

		for _, want := range []string{
			`<label for="mn-1" class="margin-toggle">&#8853;</label>`,
			`<input type="checkbox" id="mn-1" class="margin-toggle"/>`,
			`<span class="marginnote">first</span>`,
			`<label for="mn-2" class="margin-toggle">&#8853;</label>`,
			`<span class="marginnote">second</span>`,
		} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q\ngot: %s", want, got)
			}
		}
		if strings.Contains(got, "(:sidenote") {
			t.Errorf("marker left in output: %s", got)
		}
	})

	t.Run("spans lines", func(t *testing.T) {
		t.Parallel()

		got := ProcessSidenotes("<p>a (:sidenote line one\nline two sidenote:)</p>")
		if !strings.Contains(got, "<span class=\"marginnote\">line one\nline two</span>") {
			t.Errorf("multi-line note not replaced: %s", got)
		}
	})

	t.Run("no markers", func(t *testing.T) {
		t.Parallel()

		in := "<p>plain</p>"
		if got := ProcessSidenotes(in); got != in {
			t.Errorf("got %q, want unchanged", got)
		}
	})

	t.Run("counter restarts per call", func(t *testing.T) {
		t.Parallel()

		in := "(:sidenote x sidenote:)"
		a, b := ProcessSidenotes(in), ProcessSidenotes(in)
		if a != b || !strings.Contains(a, "mn-1") {
			t.Errorf("calls differ or wrong id: %q / %q", a, b)
		}
	})
}
