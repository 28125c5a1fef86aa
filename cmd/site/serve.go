package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-mdsite/internal/hints"
	"github.com/alnah/go-mdsite/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var skipBuild, strictBuild bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Build the resume PDF, then serve the site",
		Long: `serve builds the resume PDF with the configured engine, then serves the site
until interrupted. A failed build is logged and the previous PDF, if any,
keeps being served, unless --strict-build is set.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if skipBuild && strictBuild {
				return fmt.Errorf("%w: --skip-build and --strict-build are mutually exclusive", ErrUsage)
			}
			err := a.bindFlags(cmd.Flags(), map[string]string{
				"server.addr":         "addr",
				"resume.build.engine": "engine",
			})
			if err != nil {
				return err
			}
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			parts, err := a.openSite(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := a.logger()

			token := a.deps.Getenv(cfg.Admin.TokenEnv)
			if token == "" {
				logger.Printf("[WARN] admin uploads disabled: %s is not set%s", cfg.Admin.TokenEnv, hints.ForAdminToken(cfg.Admin.TokenEnv))
			}

			if !skipBuild {
				if _, err := parts.buildResume(ctx, a.stepLogger()); err != nil {
					if strictBuild {
						return err
					}
					logger.Printf("[WARN] %v", err)
				}
			}
			if ctx.Err() != nil {
				return nil
			}

			srv, err := server.New(server.Deps{
				Config:    cfg,
				Converter: parts.converter,
				Posts:     parts.posts,
				Pages:     parts.pages,
				Site:      parts.site,
			}, server.WithLogger(logger), server.WithAdminToken(token))
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx)
		},
	}

	f := cmd.Flags()
	f.String("addr", "", "listen address, host:port (overrides server.addr)")
	f.String("engine", "", "resume build engine: none, script, chrome")
	f.BoolVar(&skipBuild, "skip-build", false, "serve without building the resume PDF")
	f.BoolVar(&strictBuild, "strict-build", false, "exit when the resume build fails")
	return cmd
}
