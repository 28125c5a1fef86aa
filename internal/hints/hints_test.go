package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel() because they:
//   1. Use t.Setenv() which modifies process environment
//   2. Modify the package-level IsInContainer variable
// These are acceptable gaps: we test observable behavior through environment manipulation.

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Environment-dependent suggestions
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		ci          string
		container   bool
		noSandbox   string
		browserBin  string
		contains    []string
		notContains []string
	}{
		{
			name:     "CI suggests sandbox and browser bin",
			ci:       "true",
			contains: []string{"ROD_NO_SANDBOX", "ROD_BROWSER_BIN"},
		},
		{
			name:      "container suggests sandbox",
			container: true,
			contains:  []string{"ROD_NO_SANDBOX"},
		},
		{
			name:        "sandbox already disabled",
			container:   true,
			noSandbox:   "1",
			contains:    []string{"ROD_BROWSER_BIN"},
			notContains: []string{"ROD_NO_SANDBOX"},
		},
		{
			name:        "local with browser bin set",
			browserBin:  "/usr/bin/chromium",
			notContains: []string{"ROD_NO_SANDBOX", "ROD_BROWSER_BIN", "hint:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := IsInContainer
			defer func() { IsInContainer = orig }()
			IsInContainer = func() bool { return tt.container }

			t.Setenv("CI", tt.ci)
			t.Setenv("GITHUB_ACTIONS", "")
			t.Setenv("GITLAB_CI", "")
			t.Setenv("ROD_NO_SANDBOX", tt.noSandbox)
			t.Setenv("ROD_BROWSER_BIN", tt.browserBin)

			hint := ForBrowserConnect()
			for _, want := range tt.contains {
				if !strings.Contains(hint, want) {
					t.Errorf("hint %q missing %q", hint, want)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(hint, unwanted) {
					t.Errorf("hint %q should not contain %q", hint, unwanted)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestForConfigNotFound - Suggested config locations
// ---------------------------------------------------------------------------

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	hint := ForConfigNotFound(nil)
	if !strings.Contains(hint, "--config") {
		t.Errorf("hint = %q, want --config mention", hint)
	}

	hint = ForConfigNotFound([]string{"./site.yaml", "/home/u/.config/mdsite/site.yaml"})
	if !strings.Contains(hint, ".config/mdsite/site.yaml") {
		t.Errorf("hint = %q, want user config path", hint)
	}
}

// ---------------------------------------------------------------------------
// TestForSourceNotFound - Default input mention
// ---------------------------------------------------------------------------

func TestForSourceNotFound(t *testing.T) {
	t.Parallel()

	if hint := ForSourceNotFound(true); !strings.Contains(hint, "./test.md") {
		t.Errorf("defaulted hint = %q, want ./test.md mention", hint)
	}
	if hint := ForSourceNotFound(false); strings.Contains(hint, "./test.md") {
		t.Errorf("explicit hint = %q, should not mention default", hint)
	}
}

// ---------------------------------------------------------------------------
// TestOptionalHints - Empty input yields no hint
// ---------------------------------------------------------------------------

func TestOptionalHints(t *testing.T) {
	t.Parallel()

	if got := ForTemplateNotFound(nil); got != "" {
		t.Errorf("ForTemplateNotFound(nil) = %q, want empty", got)
	}
	if got := ForBuildFailed(""); got != "" {
		t.Errorf("ForBuildFailed(\"\") = %q, want empty", got)
	}
	if got := ForTemplateNotFound([]string{"post", "resume"}); !strings.Contains(got, "post, resume") {
		t.Errorf("ForTemplateNotFound = %q, want joined names", got)
	}
}

// ---------------------------------------------------------------------------
// TestFormat_Consistency - Every hint shares the same prefix
// ---------------------------------------------------------------------------

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()

	hints := []string{
		ForBuildTimeout(),
		ForBuildFailed("make resume"),
		ForOutputDirectory(),
		ForAdminToken("SITE_ADMIN_TOKEN"),
		ForSourceNotFound(true),
	}

	for _, h := range hints {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
