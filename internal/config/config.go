package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-mdsite/internal/dateutil"
	"github.com/alnah/go-mdsite/internal/pipeline"
	"github.com/alnah/go-mdsite/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxTitleLength   = 100  // Site title
	MaxNameLength    = 100  // Quote author
	MaxURLLength     = 2048 // Browser limit
	MaxPathLength    = 4096 // PATH_MAX on Linux
	MaxTextLength    = 500  // Quote text
	MaxAddrLength    = 255  // host:port
	MaxPatternLength = 255  // Glob pattern
	MaxFormatLength  = 50   // Date format
	MaxEnvNameLength = 100  // Environment variable name
	MaxArgLength     = 1024 // One build argument
)

// Build engines for the resume PDF.
const (
	EngineNone   = "none"   // No build step
	EngineScript = "script" // External command produces the PDF
	EngineChrome = "chrome" // Headless Chrome prints the resume page
)

// ConfigDirName is the directory under os.UserConfigDir searched by LoadConfig.
const ConfigDirName = "mdsite"

// Config holds all configuration for the site.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Server  ServerConfig  `yaml:"server"`
	Content ContentConfig `yaml:"content"`
	Static  StaticConfig  `yaml:"static"`
	Assets  AssetsConfig  `yaml:"assets"`
	Convert ConvertConfig `yaml:"convert"`
	Resume  ResumeConfig  `yaml:"resume"`
	Admin   AdminConfig   `yaml:"admin"`
}

// SiteConfig holds values shared by every page.
type SiteConfig struct {
	Title   string  `yaml:"title"`
	BaseURL string  `yaml:"baseURL"` // Prefix for relative links in rendered Markdown (empty = none)
	Favicon string  `yaml:"favicon"`
	Style   string  `yaml:"style"` // Name of style in internal/assets/styles/ or a CSS file path
	Quotes  []Quote `yaml:"quotes"`
}

// Quote is shown in the page header, one picked at random per page view.
type Quote struct {
	Text   string `yaml:"text" json:"text"`
	Author string `yaml:"author" json:"author"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// ContentConfig locates Markdown content.
type ContentConfig struct {
	PostsDir   string `yaml:"postsDir"`
	PagesDir   string `yaml:"pagesDir"`
	Pattern    string `yaml:"pattern"`    // doublestar glob relative to PostsDir
	DateFormat string `yaml:"dateFormat"` // Preset or tokens, see internal/dateutil
}

// StaticConfig defines the static file tree.
type StaticConfig struct {
	Dir       string `yaml:"dir"`
	URLPrefix string `yaml:"urlPrefix"` // Must start and end with "/"
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// ConvertConfig configures the Markdown converter used for pages and posts.
type ConvertConfig struct {
	Pretty     bool                      `yaml:"pretty"`
	Extensions map[string]map[string]any `yaml:"extensions"`
}

// ResumeConfig defines where the resume data lives and how its PDF is built.
type ResumeConfig struct {
	DataPath string      `yaml:"dataPath"` // JSON Resume file
	Template string      `yaml:"template"` // Page template name
	PDFPath  string      `yaml:"pdfPath"`  // Served at /resume.pdf
	Build    BuildConfig `yaml:"build"`
}

// BuildConfig defines the resume PDF build step run before the server starts.
type BuildConfig struct {
	Engine   string        `yaml:"engine"`   // "none", "script", "chrome"
	Command  string        `yaml:"command"`  // Script engine: executable
	Args     []string      `yaml:"args"`     // Script engine: arguments
	Dir      string        `yaml:"dir"`      // Script engine: working directory
	Artifact string        `yaml:"artifact"` // Script engine: PDF produced by the command
	Timeout  time.Duration `yaml:"timeout"`
}

// AdminConfig defines the post upload endpoint.
type AdminConfig struct {
	TokenEnv string `yaml:"tokenEnv"` // Environment variable holding the bearer token
}

// Validate checks field lengths and enumerations.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := c.validateSite(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateContent(); err != nil {
		return err
	}

	// Validate static fields
	if err := validateFieldLength("static.dir", c.Static.Dir, MaxPathLength); err != nil {
		return err
	}
	if c.Static.URLPrefix != "" {
		if !strings.HasPrefix(c.Static.URLPrefix, "/") || !strings.HasSuffix(c.Static.URLPrefix, "/") {
			return fmt.Errorf("%w: static.urlPrefix %q must start and end with /", ErrInvalidValue, c.Static.URLPrefix)
		}
	}

	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}

	// Validate convert extensions
	names := pipeline.ExtensionNames()
	for name := range c.Convert.Extensions {
		if !slices.Contains(names, name) {
			return fmt.Errorf("%w: convert.extensions: unknown extension %q", ErrInvalidValue, name)
		}
	}

	if err := c.validateResume(); err != nil {
		return err
	}

	return validateFieldLength("admin.tokenEnv", c.Admin.TokenEnv, MaxEnvNameLength)
}

func (c *Config) validateSite() error {
	if err := validateFieldLength("site.title", c.Site.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.baseURL", c.Site.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.favicon", c.Site.Favicon, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.style", c.Site.Style, MaxPathLength); err != nil {
		return err
	}
	for i, q := range c.Site.Quotes {
		if q.Text == "" {
			return fmt.Errorf("%w: site.quotes[%d].text: required", ErrInvalidValue, i)
		}
		if err := validateFieldLength(fmt.Sprintf("site.quotes[%d].text", i), q.Text, MaxTextLength); err != nil {
			return err
		}
		if err := validateFieldLength(fmt.Sprintf("site.quotes[%d].author", i), q.Author, MaxNameLength); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	for name, d := range map[string]time.Duration{
		"server.readTimeout":     c.Server.ReadTimeout,
		"server.writeTimeout":    c.Server.WriteTimeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidValue, name, d)
		}
	}
	return nil
}

func (c *Config) validateContent() error {
	if err := validateFieldLength("content.postsDir", c.Content.PostsDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("content.pagesDir", c.Content.PagesDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("content.pattern", c.Content.Pattern, MaxPatternLength); err != nil {
		return err
	}
	if c.Content.Pattern != "" && !doublestar.ValidatePattern(c.Content.Pattern) {
		return fmt.Errorf("%w: content.pattern %q is not a valid glob", ErrInvalidValue, c.Content.Pattern)
	}
	if err := validateFieldLength("content.dateFormat", c.Content.DateFormat, MaxFormatLength); err != nil {
		return err
	}
	if _, err := dateutil.Layout(c.Content.DateFormat); err != nil {
		return fmt.Errorf("content.dateFormat: %w", err)
	}
	return nil
}

func (c *Config) validateResume() error {
	r := c.Resume
	if err := validateFieldLength("resume.dataPath", r.DataPath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("resume.template", r.Template, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("resume.pdfPath", r.PDFPath, MaxPathLength); err != nil {
		return err
	}

	b := r.Build
	switch strings.ToLower(b.Engine) {
	case "", EngineNone, EngineChrome:
		// valid
	case EngineScript:
		if b.Command == "" {
			return fmt.Errorf("%w: resume.build.command: required for the script engine", ErrInvalidValue)
		}
		if b.Artifact == "" {
			return fmt.Errorf("%w: resume.build.artifact: required for the script engine", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: resume.build.engine %q (must be none, script, or chrome)", ErrInvalidValue, b.Engine)
	}
	if err := validateFieldLength("resume.build.command", b.Command, MaxPathLength); err != nil {
		return err
	}
	for i, arg := range b.Args {
		if err := validateFieldLength(fmt.Sprintf("resume.build.args[%d]", i), arg, MaxArgLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("resume.build.dir", b.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("resume.build.artifact", b.Artifact, MaxPathLength); err != nil {
		return err
	}
	if b.Timeout < 0 {
		return fmt.Errorf("%w: resume.build.timeout must not be negative, got %v", ErrInvalidValue, b.Timeout)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration that serves a site from ./content
// and ./static with the embedded templates.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Title:   "Home",
			Favicon: "/static/favicon.ico",
			Style:   "default",
		},
		Server: ServerConfig{
			Addr:            "0.0.0.0:8000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Content: ContentConfig{
			PostsDir:   filepath.Join("content", "posts"),
			PagesDir:   filepath.Join("content", "pages"),
			Pattern:    "**/*.md",
			DateFormat: dateutil.DefaultDateFormat,
		},
		Static: StaticConfig{
			Dir:       "static",
			URLPrefix: "/static/",
		},
		Convert: ConvertConfig{
			Pretty: true,
			Extensions: map[string]map[string]any{
				pipeline.ExtraBundle: {},
				"meta":               {},
				"sidenotes":          {},
				"strikethrough":      {},
				"heading_ids":        {},
			},
		},
		Resume: ResumeConfig{
			DataPath: filepath.Join("resume", "resume.json"),
			Template: "resume",
			PDFPath:  filepath.Join("static", "resume.pdf"),
			Build: BuildConfig{
				Engine:  EngineChrome,
				Timeout: time.Minute,
			},
		},
		Admin: AdminConfig{TokenEnv: "SITE_ADMIN_KEY"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the locations LoadConfig tries for a config name, in
// order: current directory, then the user config directory.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, ConfigDirName, name+ext))
		}
	}
	return paths
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in SearchPaths order.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
