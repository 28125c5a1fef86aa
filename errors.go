package mdsite

import (
	"errors"

	"github.com/alnah/go-mdsite/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// ErrFileAccess reports a source that cannot be read or a destination
	// that cannot be written. The underlying os error stays in the chain, so
	// errors.Is(err, fs.ErrNotExist) works as well.
	ErrFileAccess = errors.New("file access failed")

	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrFrontMatter    = pipeline.ErrFrontMatter
	ErrPrettyPrint    = pipeline.ErrPrettyPrint

	// Extension configuration errors, raised by NewConverter.
	ErrUnknownExtension       = pipeline.ErrUnknownExtension
	ErrInvalidExtensionConfig = pipeline.ErrInvalidExtensionConfig
)
