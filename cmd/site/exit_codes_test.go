package main

// Notes:
// - exitCodeFor: we test one sentinel per class plus wrapped errors to
//   verify the errors.Is chain.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	mdsite "github.com/alnah/go-mdsite"
	"github.com/alnah/go-mdsite/internal/assets"
	"github.com/alnah/go-mdsite/internal/build"
	"github.com/alnah/go-mdsite/internal/config"
	"github.com/alnah/go-mdsite/internal/content"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		{"usage", ErrUsage, ExitUsage},
		{"missing token", fmt.Errorf("%w: SITE_ADMIN_KEY", ErrMissingToken), ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config value", fmt.Errorf("wrap: %w", config.ErrInvalidValue), ExitUsage},
		{"unknown extension", mdsite.ErrUnknownExtension, ExitUsage},
		{"template not found", assets.ErrTemplateNotFound, ExitUsage},

		{"build failed", fmt.Errorf("building resume: script: %w", build.ErrBuildFailed), ExitBuild},
		{"build timeout", build.ErrBuildTimeout, ExitBuild},
		{"browser", build.ErrBrowserConnect, ExitBuild},
		{"artifact missing wraps not exist", fmt.Errorf("%w: %w", build.ErrArtifactMissing, os.ErrNotExist), ExitBuild},

		{"file access", mdsite.ErrFileAccess, ExitIO},
		{"not exist", fmt.Errorf("reading post: %w", os.ErrNotExist), ExitIO},
		{"permission", os.ErrPermission, ExitIO},

		{"post exists", content.ErrPostExists, ExitGeneral},
		{"not ready", ErrNotReady, ExitGeneral},
		{"canceled", context.Canceled, ExitGeneral},
		{"unknown", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodes_Conventions(t *testing.T) {
	t.Parallel()

	codes := []int{ExitSuccess, ExitGeneral, ExitUsage, ExitIO, ExitBuild}
	seen := make(map[int]bool, len(codes))
	for _, c := range codes {
		if c < 0 || c >= 126 {
			t.Errorf("exit code %d outside 0..125", c)
		}
		if seen[c] {
			t.Errorf("exit code %d used twice", c)
		}
		seen[c] = true
	}
	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Error("exit codes 0, 1 and 2 must keep their Unix meaning")
	}
}
