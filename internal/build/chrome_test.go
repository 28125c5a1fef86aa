package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeRenderer records the HTML it was asked to print.
type fakeRenderer struct {
	html   string
	pdf    []byte
	err    error
	closed bool
}

func (f *fakeRenderer) RenderFromFile(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f.html = string(data)
	return f.pdf, f.err
}

func (f *fakeRenderer) Close() error {
	f.closed = true
	return nil
}

func staticSource(html string) HTMLSource {
	return func(context.Context) (string, error) { return html, nil }
}

func TestChromeStep_Run(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "static", "resume.pdf")
	renderer := &fakeRenderer{pdf: []byte("%PDF-1.7")}

	page := `<html><head><title>Resume</title></head><body><img src="photo.png"></body></html>`
	step := NewChromeStep(staticSource(page), dest,
		WithBaseDir(dir),
		WithPrintCSS("h1 { color: black; }"),
		withRenderer(renderer),
	)

	res, err := step.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Step != "chrome" || res.Artifact != dest {
		t.Errorf("Result = %+v", res)
	}

	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "%PDF-1.7" {
		t.Errorf("PDF not written: %q, %v", data, err)
	}
	if !renderer.closed {
		t.Error("renderer not closed after the step")
	}

	for _, want := range []string{".site-header", "h1 { color: black; }", "file://"} {
		if !strings.Contains(renderer.html, want) {
			t.Errorf("printed HTML missing %q:\n%s", want, renderer.html)
		}
	}
}

func TestChromeStep_Run_Errors(t *testing.T) {
	t.Parallel()

	failing := func(context.Context) (string, error) { return "", errors.New("template exploded") }

	tests := []struct {
		name     string
		source   HTMLSource
		renderer *fakeRenderer
		wantErr  error
	}{
		{"no source", nil, &fakeRenderer{}, ErrBuildFailed},
		{"source fails", failing, &fakeRenderer{}, ErrBuildFailed},
		{"print fails", staticSource("<p>x</p>"), &fakeRenderer{err: ErrPDFGeneration}, ErrPDFGeneration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dest := filepath.Join(t.TempDir(), "resume.pdf")
			step := NewChromeStep(tt.source, dest, withRenderer(tt.renderer))
			if _, err := step.Run(context.Background()); !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := os.Stat(dest); err == nil {
				t.Error("PDF written despite failure")
			}
		})
	}
}
