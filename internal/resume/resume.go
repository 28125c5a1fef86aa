// Package resume loads the JSON Resume document behind the /resume page and
// the PDF build.
package resume

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// MaxResumeSize caps the resume data file.
const MaxResumeSize = 1 << 20

var (
	// ErrResumeNotFound indicates the resume data file does not exist.
	ErrResumeNotFound = errors.New("resume not found")
	// ErrInvalidResume indicates the resume data could not be decoded.
	ErrInvalidResume = errors.New("invalid resume")
)

// Resume follows the jsonresume.org schema, limited to the sections the
// site renders.
type Resume struct {
	Basics    Basics      `json:"basics"`
	Work      []Work      `json:"work,omitempty"`
	Projects  []Project   `json:"projects,omitempty"`
	Education []Education `json:"education,omitempty"`
	Skills    []Skill     `json:"skills,omitempty"`
}

type Basics struct {
	Name     string    `json:"name"`
	Label    string    `json:"label,omitempty"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	URL      string    `json:"url,omitempty"`
	Summary  string    `json:"summary,omitempty"`
	Location *Location `json:"location,omitempty"`
	Profiles []Profile `json:"profiles,omitempty"`
}

type Location struct {
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

type Profile struct {
	Network  string `json:"network"`
	Username string `json:"username,omitempty"`
	URL      string `json:"url"`
}

type Work struct {
	Name       string   `json:"name"`
	Position   string   `json:"position"`
	URL        string   `json:"url,omitempty"`
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate,omitempty"` // empty means current
	Summary    string   `json:"summary,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
}

type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Highlights  []string `json:"highlights,omitempty"`
}

type Education struct {
	Institution string `json:"institution"`
	Area        string `json:"area,omitempty"`
	StudyType   string `json:"studyType,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

type Skill struct {
	Name     string   `json:"name"`
	Level    string   `json:"level,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Load reads and validates the resume at path.
func Load(path string) (*Resume, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from site config
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrResumeNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading resume: %w", err)
	}
	return Parse(data)
}

// Parse decodes resume JSON. Unknown fields are rejected so typos in the
// data file surface instead of silently dropping a section.
func Parse(data []byte) (*Resume, error) {
	if len(data) > MaxResumeSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrInvalidResume, MaxResumeSize)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var r Resume
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResume, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after resume object", ErrInvalidResume)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks the fields the templates rely on.
func (r *Resume) Validate() error {
	if r.Basics.Name == "" {
		return fmt.Errorf("%w: basics.name is required", ErrInvalidResume)
	}
	for i, w := range r.Work {
		if w.Name == "" && w.Position == "" {
			return fmt.Errorf("%w: work[%d] needs a name or position", ErrInvalidResume, i)
		}
	}
	for i, p := range r.Basics.Profiles {
		if p.URL == "" {
			return fmt.Errorf("%w: basics.profiles[%d].url is required", ErrInvalidResume, i)
		}
	}
	return nil
}
