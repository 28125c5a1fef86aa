package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	mdsite "github.com/alnah/go-mdsite"
	"github.com/alnah/go-mdsite/internal/assets"
	"github.com/alnah/go-mdsite/internal/content"
	"github.com/alnah/go-mdsite/internal/page"
	"github.com/alnah/go-mdsite/internal/resume"
)

// Page sources under content.pagesDir.
const (
	homePage  = "index.md"
	aboutPage = "about.md"
)

// RecentPosts is the number of posts listed on the home page.
const RecentPosts = 5

// handlerFunc is a handler that reports failure by returning an error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts h to http.Handler, rendering returned errors.
func (s *Server) handle(h handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.writeError(w, r, err)
		}
	})
}

// writeError logs server faults and answers with the error page, or with
// JSON on admin routes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Printf("[ERROR] RequestID: %s | %s %s | %v", RequestID(r.Context()), r.Method, r.URL.Path, err)
	}

	message := http.StatusText(status)
	if status == http.StatusBadRequest || status == http.StatusConflict {
		message = err.Error()
	}

	if strings.HasPrefix(r.URL.Path, "/admin/") {
		writeJSON(w, status, map[string]string{"error": message})
		return
	}

	var buf bytes.Buffer
	renderErr := s.pages.Render(&buf, assets.TemplateError, &page.Data{
		Site:    s.site,
		Title:   http.StatusText(status),
		Status:  status,
		Message: message,
	})
	if renderErr != nil {
		s.logger.Printf("[ERROR] RequestID: %s | rendering error page: %v", RequestID(r.Context()), renderErr)
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// render executes a page template into a buffer first, so a template
// failure still produces a clean error response.
func (s *Server) render(w http.ResponseWriter, name string, data *page.Data) error {
	data.Site = s.site
	var buf bytes.Buffer
	if err := s.pages.Render(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

// markdownPage renders a Markdown file from the pages directory and returns
// the HTML with the title from its front matter.
func (s *Server) markdownPage(r *http.Request, name string) (template.HTML, string, error) {
	source := filepath.Join(s.cfg.Content.PagesDir, name)
	data, err := os.ReadFile(source) // #nosec G304 -- fixed page names under the configured pages directory
	if err != nil {
		return "", "", err
	}
	doc, err := s.converter.Render(r.Context(), string(data), mdsite.Options{
		Pretty:  s.cfg.Convert.Pretty,
		BaseURL: s.staticPrefix,
	})
	if err != nil {
		return "", "", err
	}
	title, _ := doc.Meta["title"].(string)
	return template.HTML(doc.HTML), title, nil // #nosec G203 -- converter output from site-owned Markdown
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) error {
	body, title, err := s.markdownPage(r, homePage)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	posts := s.posts.List()
	if len(posts) > RecentPosts {
		posts = posts[:RecentPosts]
	}
	return s.render(w, assets.TemplateHome, &page.Data{
		Title:   title,
		Content: body,
		Posts:   page.NewPostViews(posts, s.cfg.Content.DateFormat),
	})
}

func (s *Server) about(w http.ResponseWriter, r *http.Request) error {
	body, title, err := s.markdownPage(r, aboutPage)
	if err != nil {
		return err
	}
	if title == "" {
		title = "About"
	}
	return s.render(w, assets.TemplateAbout, &page.Data{Title: title, Content: body})
}

func (s *Server) postIndex(w http.ResponseWriter, _ *http.Request) error {
	return s.render(w, assets.TemplatePostsList, &page.Data{
		Title: "Blog",
		Posts: page.NewPostViews(s.posts.List(), s.cfg.Content.DateFormat),
	})
}

func (s *Server) post(w http.ResponseWriter, r *http.Request) error {
	slug := r.PathValue("slug")
	if err := content.ValidateSlug(slug); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, slug)
	}

	p, err := s.posts.Get(slug)
	if err != nil {
		return err
	}
	markdown, err := content.ReadBody(p)
	if err != nil {
		return err
	}
	doc, err := s.converter.Render(r.Context(), markdown, mdsite.Options{
		Pretty:  s.cfg.Convert.Pretty,
		BaseURL: path.Join(s.staticPrefix, "posts"),
	})
	if err != nil {
		return err
	}

	view := page.NewPostView(p, s.cfg.Content.DateFormat)
	return s.render(w, assets.TemplatePost, &page.Data{
		Title:   p.Title,
		Post:    &view,
		Content: template.HTML(doc.HTML), // #nosec G203 -- converter output from site-owned Markdown
	})
}

func (s *Server) resumePage(w http.ResponseWriter, _ *http.Request) error {
	res, err := resume.Load(s.cfg.Resume.DataPath)
	if err != nil {
		return err
	}
	name := s.cfg.Resume.Template
	if name == "" {
		name = assets.TemplateResume
	}
	return s.render(w, name, &page.Data{Title: "Resume", Resume: res})
}

// resumePDF serves the built PDF inline.
func (s *Server) resumePDF(w http.ResponseWriter, r *http.Request) error {
	f, err := os.Open(s.cfg.Resume.PDFPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return ErrNotFound
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="resume.pdf"`)
	http.ServeContent(w, r, "resume.pdf", info.ModTime(), f)
	return nil
}

// static serves the static directory without directory listings.
func (s *Server) static() http.Handler {
	files := http.StripPrefix(s.staticPrefix, http.FileServer(http.Dir(s.cfg.Static.Dir)))
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		if strings.HasSuffix(r.URL.Path, "/") {
			return ErrNotFound
		}
		files.ServeHTTP(w, r)
		return nil
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = fmt.Fprintf(w, "ok %s\n", time.Now().UTC().Format(time.RFC3339))
}
