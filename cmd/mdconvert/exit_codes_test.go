package main

// Notes:
// - exitCodeFor: we test the sentinel errors the conversion can return,
//   plus wrapped errors to verify the errors.Is chain.
// - Exit code constants: we verify Unix conventions (0=success, 1=general, 2=usage)
//   and custom codes are below 126.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	mdsite "github.com/alnah/go-mdsite"
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

		{"file access", mdsite.ErrFileAccess, ExitIO},
		{"wrapped file access", fmt.Errorf("%w: %w", mdsite.ErrFileAccess, os.ErrNotExist), ExitIO},
		{"not exist", os.ErrNotExist, ExitIO},
		{"permission", os.ErrPermission, ExitIO},

		{"unknown extension", mdsite.ErrUnknownExtension, ExitUsage},
		{"invalid extension config", fmt.Errorf("build: %w", mdsite.ErrInvalidExtensionConfig), ExitUsage},
		{"too many args", ErrTooManyArgs, ExitUsage},

		{"conversion failure", mdsite.ErrHTMLConversion, ExitGeneral},
		{"unknown error", errors.New("boom"), ExitGeneral},
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

// ---------------------------------------------------------------------------
// TestExitCodes_Conventions - Exit code values
// ---------------------------------------------------------------------------

func TestExitCodes_Conventions(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Errorf("standard exit codes changed: success=%d general=%d usage=%d", ExitSuccess, ExitGeneral, ExitUsage)
	}
	if ExitIO >= 126 {
		t.Errorf("ExitIO = %d, custom codes must be below 126", ExitIO)
	}
}
