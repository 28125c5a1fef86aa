// Package yamlutil isolates the YAML dependency used for site configuration
// and post front matter.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps YAML input (config files and front matter blocks).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// frontMatterFence opens and closes a front matter block.
const frontMatterFence = "---"

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// Unmarshal decodes YAML leniently: unknown keys are ignored.
func Unmarshal(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

func Marshal(v any) ([]byte, error) {
	result, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return result, nil
}

// SplitFrontMatter separates a leading "---" delimited YAML block from a
// Markdown document. When the document has no front matter, header is nil
// and body is the whole input.
func SplitFrontMatter(doc []byte) (header, body []byte) {
	doc = bytes.TrimPrefix(doc, []byte("\ufeff"))
	first, rest, ok := cutLine(doc)
	if !ok || string(bytes.TrimRight(first, " \t\r")) != frontMatterFence {
		return nil, doc
	}

	offset := 0
	for {
		line, next, more := cutLine(rest[offset:])
		if string(bytes.TrimRight(line, " \t\r")) == frontMatterFence {
			return rest[:offset], next
		}
		if !more {
			return nil, doc
		}
		offset += len(line) + 1
	}
}

// JoinFrontMatter encodes v as a front matter block followed by body.
func JoinFrontMatter(v any, body string) ([]byte, error) {
	header, err := Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(header) + len(body) + 8)
	buf.WriteString(frontMatterFence + "\n")
	buf.Write(header)
	if len(header) > 0 && header[len(header)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(frontMatterFence + "\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// cutLine returns the first line of b without its newline and the remainder.
// ok is false when b holds no newline.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	idx := bytes.IndexByte(b, '\n')
	if idx < 0 {
		return b, nil, false
	}
	return b[:idx], b[idx+1:], true
}
