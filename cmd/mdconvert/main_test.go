package main

// Notes:
// - runMain: we drive the whole CLI with injected writers and check exit
//   codes, written files and messages.
// - The default-source case changes the working directory, so it does not
//   run in parallel.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testDeps() (*Dependencies, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Dependencies{
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

func writeMarkdown(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestRunMain_WritesPrefixedOutput - Derived output path
// ---------------------------------------------------------------------------

func TestRunMain_WritesPrefixedOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeMarkdown(t, dir, "notes.md", "# Title\n\nSome *text*.\n")
	deps, stdout, stderr := testDeps()

	code := runMain(context.Background(), []string{src}, deps)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, ExitSuccess, stderr)
	}

	out := filepath.Join(dir, "output_notes.html")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	html := string(data)
	for _, want := range []string{"<h1>", "Title", "<em>", "text"} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q:\n%s", want, html)
		}
	}
	if !strings.Contains(stdout.String(), "Created "+out) {
		t.Errorf("stdout = %q, want Created message", stdout)
	}
}

func TestRunMain_ExplicitOutputNoPretty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeMarkdown(t, dir, "notes.md", "# Title\n")
	out := filepath.Join(dir, "page.html")
	deps, _, stderr := testDeps()

	code := runMain(context.Background(), []string{src, "-o", out, "--no-pretty", "-q"}, deps)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d (stderr: %s)", code, stderr)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if got := string(data); got != "<h1>Title</h1>\n" {
		t.Errorf("output = %q, want %q", got, "<h1>Title</h1>\n")
	}
}

func TestRunMain_Stdout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeMarkdown(t, dir, "notes.md", "| A | B |\n|---|---|\n| 1 | 2 |\n")
	deps, stdout, stderr := testDeps()

	code := runMain(context.Background(), []string{src, "--stdout"}, deps)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d (stderr: %s)", code, stderr)
	}
	if !strings.Contains(stdout.String(), "<table>") {
		t.Errorf("stdout missing table: %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, "output_notes.html")); !os.IsNotExist(err) {
		t.Error("--stdout should not write a file")
	}
}

func TestRunMain_Verbose(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeMarkdown(t, dir, "notes.md", "# Title\n")
	deps, stdout, stderr := testDeps()

	code := runMain(context.Background(), []string{src, "-v"}, deps)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d (stderr: %s)", code, stderr)
	}

	out := filepath.Join(dir, "output_notes.html")
	want := src + " -> " + out + " (0s)"
	if !strings.Contains(stdout.String(), want) {
		t.Errorf("stdout = %q, want timing line %q", stdout, want)
	}
	if strings.Contains(stdout.String(), "Created ") {
		t.Errorf("verbose output should replace the Created message: %q", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Errors - Exit codes and hints
// ---------------------------------------------------------------------------

func TestRunMain_MissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "missing.md")
	deps, _, stderr := testDeps()

	code := runMain(context.Background(), []string{src}, deps)
	if code != ExitIO {
		t.Errorf("exit code = %d, want %d", code, ExitIO)
	}
	if !strings.Contains(stderr.String(), "hint:") {
		t.Errorf("stderr missing hint: %q", stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "output_missing.html")); !os.IsNotExist(err) {
		t.Error("no output should be written for a missing source")
	}
}

func TestRunMain_UnwritableDestination(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeMarkdown(t, dir, "notes.md", "# Title\n")
	out := filepath.Join(dir, "missing", "page.html")
	deps, _, stderr := testDeps()

	code := runMain(context.Background(), []string{src, "-o", out}, deps)
	if code != ExitIO {
		t.Errorf("exit code = %d, want %d", code, ExitIO)
	}
	if !strings.Contains(stderr.String(), "parent directory") {
		t.Errorf("stderr missing output hint: %q", stderr)
	}
}

func TestRunMain_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"too many args", []string{"a.md", "b.md"}},
		{"unknown extension", []string{"a.md", "-e", "emoji"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			deps, _, _ := testDeps()
			if code := runMain(context.Background(), tt.args, deps); code != ExitUsage {
				t.Errorf("exit code = %d, want %d", code, ExitUsage)
			}
		})
	}
}

func TestRunMain_Version(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := testDeps()
	if code := runMain(context.Background(), []string{"--version"}, deps); code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d", code, ExitSuccess)
	}
	if !strings.HasPrefix(stdout.String(), "mdconvert ") {
		t.Errorf("stdout = %q", stdout)
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_DefaultSource - ./test.md when no argument is given
// ---------------------------------------------------------------------------

func TestRunMain_DefaultSource(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	deps, _, stderr := testDeps()
	if code := runMain(context.Background(), nil, deps); code != ExitIO {
		t.Fatalf("exit code without test.md = %d, want %d", code, ExitIO)
	}
	if !strings.Contains(stderr.String(), "./test.md") {
		t.Errorf("stderr should mention the default source: %q", stderr)
	}

	writeMarkdown(t, dir, "test.md", "# Default\n")
	deps, _, stderr = testDeps()
	if code := runMain(context.Background(), nil, deps); code != ExitSuccess {
		t.Fatalf("exit code = %d (stderr: %s)", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "output_test.html")); err != nil {
		t.Errorf("output_test.html not written: %v", err)
	}
}
