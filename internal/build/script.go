package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdsite/internal/config"
	"github.com/alnah/go-mdsite/internal/fileutil"
	"github.com/alnah/go-mdsite/internal/hints"
)

// DefaultTimeout bounds a step when the config sets none.
const DefaultTimeout = time.Minute

// ScriptStep runs an external command that produces a PDF, then copies the
// PDF to Dest.
type ScriptStep struct {
	Command  string
	Args     []string
	Dir      string // working directory; Artifact is relative to it
	Artifact string
	Dest     string
	Timeout  time.Duration
	Runner   CommandRunner
}

var _ Step = (*ScriptStep)(nil)

// NewScriptStep creates a ScriptStep from the build config.
func NewScriptStep(cfg config.BuildConfig, dest string) *ScriptStep {
	return &ScriptStep{
		Command:  cfg.Command,
		Args:     cfg.Args,
		Dir:      cfg.Dir,
		Artifact: cfg.Artifact,
		Dest:     dest,
		Timeout:  cfg.Timeout,
		Runner:   &ExecRunner{},
	}
}

func (s *ScriptStep) Name() string {
	return "script"
}

// Run executes the command, checks its exit status and the artifact, and
// copies the artifact into place.
func (s *ScriptStep) Run(ctx context.Context) (Result, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, err := s.Runner.Run(ctx, s.Dir, s.Command, s.Args...)
	output := strings.TrimSpace(stdout + stderr)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("%w: %s after %v%s", ErrBuildTimeout, s.Command, timeout, hints.ForBuildTimeout())
		}
		if errors.Is(err, context.Canceled) {
			return Result{}, err
		}
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return Result{}, fmt.Errorf("%w: %s: %s%s", ErrBuildFailed, s.Command, msg, hints.ForBuildFailed(s.Command))
	}

	artifact := s.Artifact
	if !filepath.IsAbs(artifact) {
		artifact = filepath.Join(s.Dir, artifact)
	}
	if !fileutil.FileExists(artifact) {
		return Result{}, fmt.Errorf("%w: %s did not produce %s", ErrArtifactMissing, s.Command, artifact)
	}

	if err := os.MkdirAll(filepath.Dir(s.Dest), 0o755); err != nil {
		return Result{}, fmt.Errorf("creating artifact directory: %w", err)
	}
	if err := fileutil.CopyFile(artifact, s.Dest); err != nil {
		return Result{}, err
	}

	return Result{
		Step:     s.Name(),
		Artifact: s.Dest,
		Duration: time.Since(start),
		Output:   output,
	}, nil
}
