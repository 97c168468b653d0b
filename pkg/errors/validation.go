package errors

import (
	"math"
	"strings"
	"unicode"

	"github.com/matzehuels/relink/pkg/geometry"
)

// MaxIDLength bounds entity and diagram ids.
const MaxIDLength = 128

// ValidateID validates an entity or diagram id. Diagram ids become file names
// and database keys, so anything that could escape a directory is rejected:
//   - No empty ids
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of MaxIDLength characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", MaxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "id contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "id contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}
	return nil
}

// ValidateBounds rejects non-finite coordinates and negative sizes.
func ValidateBounds(b geometry.Bounds) error {
	for _, v := range []float64{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidGeometry, "bounds contain non-finite values: %+v", b)
		}
	}
	if b.Width < 0 || b.Height < 0 {
		return New(ErrCodeInvalidGeometry, "bounds have negative size: %gx%g", b.Width, b.Height)
	}
	return nil
}

// ValidateDirection rejects unknown attachment sides.
func ValidateDirection(d geometry.Direction) error {
	if !d.Valid() {
		return New(ErrCodeInvalidInput, "invalid direction %q (want Up, Right, Down, Left or empty)", string(d))
	}
	return nil
}

// ValidateFormat checks format against the supported output formats.
func ValidateFormat(format string, supported ...string) error {
	for _, s := range supported {
		if strings.EqualFold(format, s) {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(supported, ", "))
}
