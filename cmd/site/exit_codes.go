package main

import (
	"errors"
	"io/fs"

	mdsite "github.com/alnah/go-mdsite"
	"github.com/alnah/go-mdsite/internal/assets"
	"github.com/alnah/go-mdsite/internal/build"
	"github.com/alnah/go-mdsite/internal/config"
)

// Exit codes for the site CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, arguments or config
	ExitIO      = 3 // Source not found, destination not writable
	ExitBuild   = 4 // Resume PDF build failed
)

// ErrUsage marks invalid command line input.
var ErrUsage = errors.New("invalid usage")

var usageErrors = []error{
	ErrUsage,
	ErrMissingToken,
	config.ErrConfigNotFound,
	config.ErrEmptyConfigName,
	config.ErrConfigParse,
	config.ErrFieldTooLong,
	config.ErrInvalidValue,
	mdsite.ErrUnknownExtension,
	mdsite.ErrInvalidExtensionConfig,
	assets.ErrTemplateNotFound,
	assets.ErrStyleNotFound,
	build.ErrUnknownEngine,
}

var buildErrors = []error{
	build.ErrBuildFailed,
	build.ErrBuildTimeout,
	build.ErrArtifactMissing,
	build.ErrBrowserConnect,
	build.ErrPageCreate,
	build.ErrPageLoad,
	build.ErrPDFGeneration,
}

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if isAny(err, usageErrors) {
		return ExitUsage
	}
	if isAny(err, buildErrors) {
		return ExitBuild
	}
	if errors.Is(err, mdsite.ErrFileAccess) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) {
		return ExitIO
	}
	return ExitGeneral
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
