package content

import "errors"

// Sentinel errors for content operations.
var (
	ErrPostNotFound  = errors.New("post not found")
	ErrPostExists    = errors.New("post already exists")
	ErrInvalidSlug   = errors.New("invalid slug")
	ErrDuplicateSlug = errors.New("duplicate slug")
	ErrInvalidPost   = errors.New("invalid post")
	ErrImport        = errors.New("HTML import failed")
)
