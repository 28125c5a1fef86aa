package assets

import (
	"errors"
	"fmt"
)

// MaxAssetNameLength caps style and template names.
const MaxAssetNameLength = 64

// ValidateAssetName checks that an asset name is safe for use as a filename:
// non-empty, at most MaxAssetNameLength bytes, and made of ASCII letters,
// digits, '-' and '_' only. Separators and dots are therefore rejected.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > MaxAssetNameLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidAssetName, MaxAssetNameLength)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
		}
	}
	return nil
}

func wrapLayoutError(err error) error {
	if errors.Is(err, ErrTemplateNotFound) {
		return fmt.Errorf("%w: %v", ErrLayoutNotFound, err)
	}
	return err
}
