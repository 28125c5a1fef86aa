// Package server serves the site over HTTP from an explicit route table.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	mdsite "github.com/alnah/go-mdsite"
	"github.com/alnah/go-mdsite/internal/config"
	"github.com/alnah/go-mdsite/internal/content"
	"github.com/alnah/go-mdsite/internal/page"
)

// DocumentRenderer renders Markdown. *mdsite.Converter implements it.
type DocumentRenderer interface {
	Render(ctx context.Context, markdown string, opts mdsite.Options) (*mdsite.Document, error)
}

var _ DocumentRenderer = (*mdsite.Converter)(nil)

// Deps are the components a Server is built from.
type Deps struct {
	Config    *config.Config
	Converter DocumentRenderer
	Posts     *content.Store
	Pages     *page.Renderer
	Site      page.Site
}

// Server holds the site's handlers.
type Server struct {
	cfg          *config.Config
	converter    DocumentRenderer
	posts        *content.Store
	pages        *page.Renderer
	site         page.Site
	logger       *log.Logger
	adminToken   string
	staticPrefix string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error log.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAdminToken sets the bearer token accepted by the admin routes. With
// no token every admin request is refused.
func WithAdminToken(token string) Option {
	return func(s *Server) {
		s.adminToken = token
	}
}

// New creates a Server.
func New(deps Deps, opts ...Option) (*Server, error) {
	switch {
	case deps.Config == nil:
		return nil, fmt.Errorf("%w: config", ErrMissingDependency)
	case deps.Converter == nil:
		return nil, fmt.Errorf("%w: converter", ErrMissingDependency)
	case deps.Posts == nil:
		return nil, fmt.Errorf("%w: post store", ErrMissingDependency)
	case deps.Pages == nil:
		return nil, fmt.Errorf("%w: page renderer", ErrMissingDependency)
	}

	s := &Server{
		cfg:          deps.Config,
		converter:    deps.Converter,
		posts:        deps.Posts,
		pages:        deps.Pages,
		site:         deps.Site,
		logger:       log.New(io.Discard, "", 0),
		staticPrefix: deps.Config.Static.URLPrefix,
	}
	if s.staticPrefix == "" {
		s.staticPrefix = "/static/"
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Route binds a method and a ServeMux pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler
}

// Routes returns the site's route table.
func (s *Server) Routes() []Route {
	return []Route{
		{http.MethodGet, "/{$}", s.handle(s.home)},
		{http.MethodGet, "/about", s.handle(s.about)},
		{http.MethodGet, "/blog", s.handle(s.postIndex)},
		{http.MethodGet, "/blog/{slug}", s.handle(s.post)},
		{http.MethodGet, "/resume", s.handle(s.resumePage)},
		{http.MethodGet, "/resume.pdf", s.handle(s.resumePDF)},
		{http.MethodGet, s.staticPrefix, s.static()},
		{http.MethodGet, "/healthz", http.HandlerFunc(healthz)},
		{http.MethodPost, "/admin/posts", s.handle(s.uploadPost)},
		// Upload path used by existing publishing scripts.
		{http.MethodPost, "/admin/add", s.handle(s.uploadPost)},
	}
}

// Handler returns the route table mounted on a ServeMux, wrapped in the
// logging, recovery and redirect middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, rt := range s.Routes() {
		mux.Handle(rt.Method+" "+rt.Pattern, rt.Handler)
	}
	mux.Handle("/", s.handle(func(http.ResponseWriter, *http.Request) error {
		return ErrNotFound
	}))

	var h http.Handler = mux
	h = s.redirectTrailingSlash(h)
	h = s.recoverPanics(h)
	h = s.logRequests(h)
	return h
}

// ListenAndServe listens on the configured address and serves until ctx
// is done. A ctx cancelled before the listener is up is not an error.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Server.Addr)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("listening on %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		ErrorLog:          s.logger,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("[INFO] listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Printf("[INFO] shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
