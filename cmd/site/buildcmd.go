package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the resume PDF",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.bindFlags(cmd.Flags(), map[string]string{"resume.build.engine": "engine"}); err != nil {
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

			results, err := parts.buildResume(cmd.Context(), a.stepLogger())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				a.printf("Nothing to build (engine %q)\n", cfg.Resume.Build.Engine)
				return nil
			}
			for _, r := range results {
				a.printf("%s %s -> %s (%v)\n", a.ok.Sprint("built"), r.Step, r.Artifact, r.Duration.Round(time.Millisecond))
			}
			return nil
		},
	}
	cmd.Flags().String("engine", "", "resume build engine: none, script, chrome")
	return cmd
}
