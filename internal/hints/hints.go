// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdsite/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for headless Chrome connection errors
// raised while printing the resume PDF.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForBuildTimeout returns a hint for a resume build that ran out of time.
func ForBuildTimeout() string {
	return format("raise resume.build.timeout in the site config")
}

// ForBuildFailed returns a hint for a build command that exited non-zero.
func ForBuildFailed(command string) string {
	if command == "" {
		return ""
	}
	return format("run " + command + " manually to see its full output")
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/site.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/mdsite") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForSourceNotFound returns a hint for a missing Markdown source given to
// the standalone converter.
func ForSourceNotFound(defaulted bool) string {
	if defaulted {
		return format("no file argument given, so ./test.md was used; pass a Markdown file path")
	}
	return format("check the path and that the file is readable")
}

// ForOutputDirectory returns hints for output directory errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForAdminToken returns a hint when the admin upload token is not configured.
func ForAdminToken(envName string) string {
	return format("set " + envName + " in the environment or in .env")
}

// ForTemplateNotFound lists the page templates that can be used instead.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
