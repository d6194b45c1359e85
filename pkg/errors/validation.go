package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateUnitID validates an areal unit identifier.
//
// Unit identifiers are opaque, but they end up as CSV cells, JSON keys and
// cache key material, so the rules reject values that would corrupt those:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of 128 characters
func ValidateUnitID(id string) error {
	if id == "" {
		return New(ErrCodeMalformedGraph, "unit id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeMalformedGraph, "unit id too long (max 128 characters): %.20q...", id)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeMalformedGraph, "unit id %q contains control characters", id)
		}
	}
	if strings.TrimSpace(id) != id {
		return New(ErrCodeMalformedGraph, "unit id %q has surrounding whitespace", id)
	}
	return nil
}

// datasetCodeRegex matches dataset codes such as "GA" or "nc-2020".
var datasetCodeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,31}$`)

// ValidateDatasetCode validates a dataset code used to look up a graph file in
// the dataset directory. Codes are plain basenames without an extension.
func ValidateDatasetCode(code string) error {
	if code == "" {
		return New(ErrCodeInvalidInput, "dataset code cannot be empty")
	}
	if !datasetCodeRegex.MatchString(code) {
		return New(ErrCodeInvalidInput, "invalid dataset code: %q", code)
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal and ensures reasonable path length.
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
