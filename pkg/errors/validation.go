package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateOutputPath validates a base path for rendered artifacts.
// Extensions are appended by the caller, so the base must not already end
// in a path separator.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path must not be a directory: %q", path)
	}

	return nil
}

// ValidateCount validates a measure count argument.
// Zero is accepted; it makes insertions degenerate but harmless.
func ValidateCount(count int) error {
	if count < 0 {
		return New(ErrCodeInvalidInput, "count must not be negative, got %d", count)
	}
	return nil
}
