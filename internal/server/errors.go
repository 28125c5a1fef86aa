package server

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/alnah/go-mdsite/internal/content"
	"github.com/alnah/go-mdsite/internal/resume"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
	// ErrUpload is returned by Client for unexpected server answers.
	ErrUpload = errors.New("upload failed")
	// ErrMissingDependency is returned by New when a required component is nil.
	ErrMissingDependency = errors.New("missing server dependency")
)

// statusFor maps a handler error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, content.ErrPostNotFound),
		errors.Is(err, resume.ErrResumeNotFound),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict), errors.Is(err, content.ErrPostExists):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, content.ErrInvalidSlug),
		errors.Is(err, content.ErrInvalidPost):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
