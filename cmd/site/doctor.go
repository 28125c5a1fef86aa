package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"

	"github.com/alnah/go-mdsite/internal/assets"
	"github.com/alnah/go-mdsite/internal/config"
	"github.com/alnah/go-mdsite/internal/content"
	"github.com/alnah/go-mdsite/internal/fileutil"
	"github.com/alnah/go-mdsite/internal/hints"
	"github.com/alnah/go-mdsite/internal/resume"
)

// ErrNotReady is returned by doctor when a check fails.
var ErrNotReady = errors.New("site is not ready")

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Config   configInfo  `json:"config"`
	Content  contentInfo `json:"content"`
	Resume   resumeInfo  `json:"resume"`
	Chrome   chromeInfo  `json:"chrome"`
	Admin    adminInfo   `json:"admin"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

type configInfo struct {
	Loaded bool   `json:"loaded"`
	Source string `json:"source"` // file name or "defaults"
}

type contentInfo struct {
	Posts     int      `json:"posts"`
	Drafts    int      `json:"drafts"`
	PagesDir  bool     `json:"pages_dir"`
	StaticDir bool     `json:"static_dir"`
	Templates []string `json:"templates,omitempty"`
	Theme     string   `json:"theme"` // "embedded" or the assets base path
}

type resumeInfo struct {
	Name   string `json:"name,omitempty"`
	Engine string `json:"engine"`
	PDF    bool   `json:"pdf"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Required bool   `json:"required"`
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
	Version  string `json:"version,omitempty"`
	Sandbox  bool   `json:"sandbox"`
}

type adminInfo struct {
	TokenEnv string `json:"token_env"`
	TokenSet bool   `json:"token_set"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

func (r *doctorResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func newDoctorCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check config, content, resume build and environment",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := a.runDoctor(cmd)

			if jsonOutput {
				enc := json.NewEncoder(a.deps.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				a.printDoctorResult(a.deps.Stdout, result)
			}

			if result.Status == "errors" {
				return fmt.Errorf("%w: %d error(s)", ErrNotReady, len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	return cmd
}

// runDoctor performs all diagnostic checks.
func (a *app) runDoctor(cmd *cobra.Command) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  a.deps.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: a.deps.Getenv("ROD_BROWSER_BIN"),
		},
	}

	cfg := a.checkConfig(cmd, result)
	checkContent(cfg, result)
	checkResume(cmd.Context(), cfg, result)
	a.checkAdmin(cfg, result)
	a.checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkConfig loads the config. On failure the remaining checks run
// against the defaults.
func (a *app) checkConfig(cmd *cobra.Command, result *doctorResult) *config.Config {
	result.Config.Source = "defaults"
	for _, p := range config.SearchPaths(a.configName) {
		if _, err := os.Stat(p); err == nil {
			result.Config.Source = p
			break
		}
	}
	if strings.ContainsAny(a.configName, `/\`) {
		result.Config.Source = a.configName
	}

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		result.errorf("Config: %v", err)
		return config.DefaultConfig()
	}
	result.Config.Loaded = true
	return cfg
}

func checkContent(cfg *config.Config, result *doctorResult) {
	idx, err := content.BuildIndex(cfg.Content.PostsDir, cfg.Content.Pattern)
	if err != nil {
		result.errorf("Posts: %v", err)
	} else {
		result.Content.Posts = len(idx.List())
		result.Content.Drafts = idx.Len() - result.Content.Posts
		if result.Content.Posts == 0 {
			result.warnf("No published posts in %s", cfg.Content.PostsDir)
		}
	}

	result.Content.PagesDir = fileutil.DirExists(cfg.Content.PagesDir)
	if !result.Content.PagesDir {
		result.warnf("Pages directory %s not found: home and about pages will be empty", cfg.Content.PagesDir)
	}
	result.Content.StaticDir = fileutil.DirExists(cfg.Static.Dir)
	if !result.Content.StaticDir {
		result.warnf("Static directory %s not found", cfg.Static.Dir)
	}

	resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		result.errorf("Assets: %v", err)
		return
	}
	result.Content.Theme = "embedded"
	if resolver.HasCustomLoader() {
		result.Content.Theme = cfg.Assets.BasePath
	}
	if _, err := resolver.ResolveStyle(cfg.Site.Style); err != nil {
		result.errorf("Style: %v", err)
	}
	for _, name := range []string{
		assets.TemplateHome,
		assets.TemplateAbout,
		assets.TemplatePostsList,
		assets.TemplatePost,
		assets.TemplateError,
		resumeTemplate(cfg),
	} {
		if _, err := resolver.LoadTemplateSet(name); err != nil {
			result.errorf("Template %q: %v", name, err)
			continue
		}
		result.Content.Templates = append(result.Content.Templates, name)
	}
}

func checkResume(ctx context.Context, cfg *config.Config, result *doctorResult) {
	result.Resume.Engine = strings.ToLower(cfg.Resume.Build.Engine)

	r, err := resume.Load(cfg.Resume.DataPath)
	switch {
	case errors.Is(err, resume.ErrResumeNotFound):
		result.warnf("Resume data %s not found: /resume will answer 404", cfg.Resume.DataPath)
	case err != nil:
		result.errorf("Resume: %v", err)
	default:
		result.Resume.Name = r.Basics.Name
	}

	result.Resume.PDF = fileutil.FileExists(cfg.Resume.PDFPath)

	switch result.Resume.Engine {
	case config.EngineChrome:
		result.Chrome.Required = true
		checkChrome(ctx, result)
	case config.EngineScript:
		if _, err := exec.LookPath(cfg.Resume.Build.Command); err != nil {
			result.errorf("Build command %q not found%s", cfg.Resume.Build.Command, hints.ForBuildFailed(cfg.Resume.Build.Command))
		}
	default:
		if !result.Resume.PDF {
			result.warnf("No resume PDF at %s and no build engine: /resume.pdf will answer 404", cfg.Resume.PDFPath)
		}
	}
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(ctx context.Context, result *doctorResult) {
	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.errorf("Chrome/Chromium not found. Install Chrome, set ROD_BROWSER_BIN, or use resume.build.engine: none")
			return
		}
	}
	if _, err := os.Stat(chromePath); err != nil {
		result.errorf("Chrome not found at %s", chromePath)
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, chromePath, "--version").Output() // #nosec G204 -- browser path from launcher or ROD_BROWSER_BIN
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.warnf("Could not get Chrome version: %v", err)
	}
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

func (a *app) checkAdmin(cfg *config.Config, result *doctorResult) {
	result.Admin.TokenEnv = cfg.Admin.TokenEnv
	result.Admin.TokenSet = a.deps.Getenv(cfg.Admin.TokenEnv) != ""
	if !result.Admin.TokenSet {
		result.warnf("%s is not set: admin uploads are refused", cfg.Admin.TokenEnv)
	}
}

// checkEnvironment detects container and CI environments.
func (a *app) checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = a.isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if a.deps.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Chrome.Required && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.warnf("Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer reports whether we run in a container and which signal said
// so.
func (a *app) isContainer() (bool, string) {
	if a.deps.Getenv("SITE_CONTAINER") == "1" {
		return true, "SITE_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := a.deps.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if a.deps.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used by the chrome engine.
func checkSystem(result *doctorResult) {
	f, err := os.CreateTemp("", "site-doctor-*")
	if err != nil {
		result.errorf("Temp directory not writable: %s", os.TempDir())
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func (a *app) printDoctorResult(w io.Writer, r *doctorResult) {
	okTag := a.ok.Sprint("[OK]")
	warnTag := a.warn.Sprint("[WARN]")
	errTag := a.fail.Sprint("[ERROR]")

	fmt.Fprintln(w, "site doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config")
	if r.Config.Loaded {
		fmt.Fprintf(w, "  %s Source: %s\n", okTag, r.Config.Source)
	} else {
		fmt.Fprintf(w, "  %s Not loaded\n", errTag)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Content")
	fmt.Fprintf(w, "  %s Posts: %d published, %d drafts\n", okTag, r.Content.Posts, r.Content.Drafts)
	fmt.Fprintf(w, "  %s Templates (%s): %s\n", okTag, r.Content.Theme, strings.Join(r.Content.Templates, ", "))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Resume")
	if r.Resume.Name != "" {
		fmt.Fprintf(w, "  %s Data: %s\n", okTag, r.Resume.Name)
	} else {
		fmt.Fprintf(w, "  %s Data: missing\n", warnTag)
	}
	fmt.Fprintf(w, "  %s Engine: %s\n", okTag, r.Resume.Engine)
	if r.Chrome.Required {
		if r.Chrome.Found {
			fmt.Fprintf(w, "  %s Chrome: %s %s\n", okTag, r.Chrome.Path, r.Chrome.Version)
		} else {
			fmt.Fprintf(w, "  %s Chrome: not found\n", errTag)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Admin")
	if r.Admin.TokenSet {
		fmt.Fprintf(w, "  %s Token: %s is set\n", okTag, r.Admin.TokenEnv)
	} else {
		fmt.Fprintf(w, "  %s Token: %s is not set\n", warnTag, r.Admin.TokenEnv)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  %s Platform: %s/%s\n", okTag, r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  %s Container: detected (%s)\n", okTag, r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintf(w, "  %s CI: detected\n", okTag)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  %s %s\n", warnTag, warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  %s %s\n", errTag, err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to serve")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
