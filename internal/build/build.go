// Package build produces generated site artifacts, currently the resume
// PDF, before the server starts. A build is a list of steps run in order.
package build

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/alnah/go-mdsite/internal/config"
)

// Result describes one completed step.
type Result struct {
	Step     string
	Artifact string // file the step wrote
	Duration time.Duration
	Output   string // combined command output, if any
}

// Step is one unit of a build.
type Step interface {
	Name() string
	Run(ctx context.Context) (Result, error)
}

// Runner executes steps in order and logs each outcome.
type Runner struct {
	logger *log.Logger
}

// NewRunner creates a Runner. A nil logger discards the step log.
func NewRunner(logger *log.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes steps in order and stops at the first failure. The results
// of the steps that completed are returned alongside the error.
func (r *Runner) Run(ctx context.Context, steps ...Step) ([]Result, error) {
	results := make([]Result, 0, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		start := time.Now()
		res, err := step.Run(ctx)
		if err != nil {
			r.logf("[ERROR] build %s failed after %v: %v", step.Name(), time.Since(start).Round(time.Millisecond), err)
			return results, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if res.Step == "" {
			res.Step = step.Name()
		}
		if res.Duration == 0 {
			res.Duration = time.Since(start)
		}
		r.logf("[INFO] build %s -> %s (%v)", res.Step, res.Artifact, res.Duration.Round(time.Millisecond))
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}

// ResumeSteps returns the steps that build the resume PDF for cfg.
// source renders the resume page for the chrome engine. The "none" engine
// yields no steps.
func ResumeSteps(cfg config.ResumeConfig, source HTMLSource) ([]Step, error) {
	switch strings.ToLower(cfg.Build.Engine) {
	case config.EngineNone, "":
		return nil, nil
	case config.EngineScript:
		return []Step{NewScriptStep(cfg.Build, cfg.PDFPath)}, nil
	case config.EngineChrome:
		return []Step{NewChromeStep(source, cfg.PDFPath, WithTimeout(cfg.Build.Timeout))}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Build.Engine)
	}
}
