package server

import (
	"compress/bzip2"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alnah/go-mdsite/internal/content"
)

// Upload limits.
const (
	MaxUploadBody     = 8 << 20  // JSON request body
	MaxUploadMarkdown = 16 << 20 // decompressed Markdown
)

// PostUpload is the JSON body of an admin upload.
type PostUpload struct {
	Title string `json:"title"`
	// Timestamp is the publication time in Unix seconds; 0 means now.
	Timestamp int64  `json:"timestamp"`
	Slug      string `json:"slug"`
	// FileContentCompressed is the Markdown source, bzip2-compressed and
	// hex-encoded.
	FileContentCompressed string `json:"file_content_compressed"`
	Summary               string `json:"summary,omitempty"`
	Draft                 bool   `json:"draft,omitempty"`
	Overwrite             bool   `json:"overwrite"`
}

// uploadResponse answers a successful upload.
type uploadResponse struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

func (s *Server) uploadPost(w http.ResponseWriter, r *http.Request) error {
	if !s.authorized(r) {
		return ErrForbidden
	}

	var up PostUpload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxUploadBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&up); err != nil {
		return fmt.Errorf("%w: decoding body: %v", ErrBadRequest, err)
	}

	markdown, err := DecodeContent(up.FileContentCompressed)
	if err != nil {
		return err
	}

	date := ""
	if up.Timestamp > 0 {
		date = time.Unix(up.Timestamp, 0).UTC().Format(time.RFC3339)
	}

	p, err := s.posts.Save(content.Upload{
		Title:     up.Title,
		Slug:      up.Slug,
		Date:      date,
		Summary:   up.Summary,
		Draft:     up.Draft,
		Content:   markdown,
		Overwrite: up.Overwrite,
	})
	if err != nil {
		return err
	}

	s.logger.Printf("[INFO] RequestID: %s | saved post %q to %s", RequestID(r.Context()), p.Slug, p.Path)
	writeJSON(w, http.StatusOK, uploadResponse{Slug: p.Slug, URL: p.URL()})
	return nil
}

// authorized checks the bearer token. With no configured token every
// request is refused.
func (s *Server) authorized(r *http.Request) bool {
	if s.adminToken == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.adminToken)) == 1
}

// DecodeContent reverses the upload encoding: hex, then bzip2. The result
// must be UTF-8 text.
func DecodeContent(encoded string) (string, error) {
	compressed, err := hex.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", fmt.Errorf("%w: file_content_compressed is not hex: %v", ErrBadRequest, err)
	}

	data, err := io.ReadAll(io.LimitReader(bzip2.NewReader(strings.NewReader(string(compressed))), MaxUploadMarkdown+1))
	if err != nil {
		return "", fmt.Errorf("%w: file_content_compressed is not bzip2: %v", ErrBadRequest, err)
	}
	if len(data) > MaxUploadMarkdown {
		return "", fmt.Errorf("%w: Markdown exceeds %d bytes", ErrBadRequest, MaxUploadMarkdown)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: Markdown is not valid UTF-8", ErrBadRequest)
	}
	return string(data), nil
}
