package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdsite/internal/fileutil"
	"github.com/alnah/go-mdsite/internal/hints"
	"github.com/alnah/go-mdsite/internal/pipeline"
)

// HTMLSource renders the page to print.
type HTMLSource func(ctx context.Context) (string, error)

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing
// without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string) ([]byte, error)
	Close() error
}

var (
	_ Step        = (*ChromeStep)(nil)
	_ pdfRenderer = (*rodRenderer)(nil)
)

// printCSS hides site chrome when the resume page is printed.
const printCSS = `.site-header, .site-footer, .download { display: none; }
body { margin: 0; }`

// ChromeStep prints the resume page to PDF with headless Chrome.
type ChromeStep struct {
	source   HTMLSource
	dest     string
	baseDir  string
	css      string
	timeout  time.Duration
	renderer pdfRenderer
}

// ChromeOption configures a ChromeStep.
type ChromeOption func(*ChromeStep)

// WithTimeout bounds page load and printing.
func WithTimeout(d time.Duration) ChromeOption {
	return func(s *ChromeStep) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithBaseDir resolves relative image and link references against dir.
func WithBaseDir(dir string) ChromeOption {
	return func(s *ChromeStep) {
		s.baseDir = dir
	}
}

// WithPrintCSS appends css to the built-in print stylesheet.
func WithPrintCSS(css string) ChromeOption {
	return func(s *ChromeStep) {
		s.css = printCSS + "\n" + css
	}
}

func withRenderer(r pdfRenderer) ChromeOption {
	return func(s *ChromeStep) {
		s.renderer = r
	}
}

// NewChromeStep creates a ChromeStep writing the PDF of source to dest.
func NewChromeStep(source HTMLSource, dest string, opts ...ChromeOption) *ChromeStep {
	s := &ChromeStep{
		source:  source,
		dest:    dest,
		css:     printCSS,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = newRodRenderer(s.timeout)
	}
	return s
}

func (s *ChromeStep) Name() string {
	return "chrome"
}

// Run renders the page, prints it, and writes the PDF to dest. The browser
// is closed when the step ends.
func (s *ChromeStep) Run(ctx context.Context) (Result, error) {
	if s.source == nil {
		return Result{}, fmt.Errorf("%w: no page source", ErrBuildFailed)
	}
	defer func() { _ = s.renderer.Close() }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	htmlContent, err := s.source(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: rendering page: %v", ErrBuildFailed, err)
	}

	htmlContent = (&pipeline.CSSInjection{}).InjectCSS(ctx, htmlContent, s.css)
	htmlContent, err = pipeline.RewriteRelativePaths(htmlContent, s.baseDir)
	if err != nil {
		return Result{}, fmt.Errorf("%w: rewriting paths: %v", ErrBuildFailed, err)
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return Result{}, err
	}
	defer cleanup()

	pdf, err := s.renderer.RenderFromFile(ctx, tmpPath)
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(filepath.Dir(s.dest), 0o755); err != nil {
		return Result{}, fmt.Errorf("creating artifact directory: %w", err)
	}
	if err := fileutil.ReplaceFile(s.dest, pdf); err != nil {
		return Result{}, err
	}

	return Result{Step: s.Name(), Artifact: s.dest, Duration: time.Since(start)}, nil
}

// PDF page dimensions in inches (US Letter format).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

// rodRenderer implements pdfRenderer using go-rod.
// Rod downloads Chromium on first run if no browser is found.
type rodRenderer struct {
	browser *rod.Browser
	timeout time.Duration
}

func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect())
	}

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		return fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect())
	}
	return nil
}

// Close releases browser resources.
func (r *rodRenderer) Close() error {
	if r.browser != nil {
		err := r.browser.Close()
		r.browser = nil
		return err
	}
	return nil
}

// RenderFromFile opens a local HTML file in headless Chrome and prints it.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

func floatPtr(v float64) *float64 {
	return &v
}
