package build

import "errors"

var (
	ErrBuildFailed     = errors.New("build failed")
	ErrBuildTimeout    = errors.New("build timed out")
	ErrArtifactMissing = errors.New("build artifact missing")
	ErrUnknownEngine   = errors.New("unknown build engine")

	// Chrome engine.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)
