package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/alnah/go-mdsite/internal/config"
	"github.com/alnah/go-mdsite/internal/hints"
)

const (
	defaultConfigName = "site"
	defaultEnvFile    = ".env"
	envPrefix         = "SITE"
)

// overlayKeys are the config keys settable from SITE_* variables and
// command flags, on top of the config file.
var overlayKeys = []string{
	"server.addr",
	"site.baseurl",
	"content.postsdir",
	"content.pagesdir",
	"static.dir",
	"assets.basepath",
	"resume.build.engine",
	"admin.tokenenv",
}

// app carries the global flags and the state shared by every command.
type app struct {
	deps *Dependencies
	v    *viper.Viper

	configName string
	envFile    string
	verbose    bool
	quiet      bool
	noColor    bool

	ok   *color.Color
	warn *color.Color
	fail *color.Color
}

func newRootCmd(deps *Dependencies) *cobra.Command {
	a := &app{
		deps: deps,
		v:    viper.New(),
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed),
	}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "site",
		Short: "Serve and maintain a Markdown personal website",
		Long: `site serves a personal website: a home page, an about page, a blog and a
resume, all rendered from Markdown and JSON files on disk.

Config is read from site.yaml in the current directory or the user config
directory. SITE_* environment variables and command flags override it, e.g.
SITE_SERVER_ADDR or serve --addr.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configName, "config", "c", defaultConfigName, "config name or file path")
	pf.StringVar(&a.envFile, "env-file", defaultEnvFile, "dotenv file loaded before the config (empty to skip)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log build steps and timings")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "only print errors")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newServeCmd(a),
		newBuildCmd(a),
		newConvertCmd(a),
		newPostsCmd(a),
		newImportCmd(a),
		newPublishCmd(a),
		newDoctorCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup runs before every command: it validates global flags and loads
// the dotenv file. Variables already set in the environment win.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.verbose && a.quiet {
		return fmt.Errorf("%w: --verbose and --quiet are mutually exclusive", ErrUsage)
	}
	if a.noColor {
		a.ok.DisableColor()
		a.warn.DisableColor()
		a.fail.DisableColor()
	}

	if a.envFile == "" {
		return nil
	}
	if err := godotenv.Load(a.envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
			return nil
		}
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// usageArgs tags positional argument errors as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}

// bindFlags binds command flags to config keys, so that a flag set on the
// command line overrides the environment and the config file.
func (a *app) bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// loadConfig reads the config file and applies the environment and flag
// overlay. A missing default config falls back to DefaultConfig; a config
// named explicitly with --config must exist.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(a.configName)
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return nil, err
		}
		if cmd.Flags().Changed("config") {
			return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(a.configName)))
		}
		a.debugf("no %q config found, using defaults", a.configName)
		cfg = config.DefaultConfig()
	}

	if err := a.overlay(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlay copies values set in SITE_* variables or bound flags into cfg and
// revalidates it.
func (a *app) overlay(cfg *config.Config) error {
	fields := map[string]*string{
		"server.addr":         &cfg.Server.Addr,
		"site.baseurl":        &cfg.Site.BaseURL,
		"content.postsdir":    &cfg.Content.PostsDir,
		"content.pagesdir":    &cfg.Content.PagesDir,
		"static.dir":          &cfg.Static.Dir,
		"assets.basepath":     &cfg.Assets.BasePath,
		"resume.build.engine": &cfg.Resume.Build.Engine,
		"admin.tokenenv":      &cfg.Admin.TokenEnv,
	}
	for _, key := range overlayKeys {
		if a.v.IsSet(key) {
			*fields[key] = a.v.GetString(key)
		}
	}
	return cfg.Validate()
}

// logger returns the server and build log. Quiet mode discards it.
func (a *app) logger() *log.Logger {
	if a.quiet {
		return log.New(io.Discard, "", 0)
	}
	return log.New(a.deps.Stderr, "", log.LstdFlags)
}

// stepLogger returns the build step log, shown only in verbose mode.
func (a *app) stepLogger() *log.Logger {
	if !a.verbose {
		return log.New(io.Discard, "", 0)
	}
	return a.logger()
}

func (a *app) debugf(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.deps.Stderr, format+"\n", args...)
	}
}

// printf writes a status line unless quiet.
func (a *app) printf(format string, args ...any) {
	if !a.quiet {
		fmt.Fprintf(a.deps.Stdout, format, args...)
	}
}
