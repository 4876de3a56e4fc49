package errors

import (
	"strings"
	"unicode"
)

// ValidateStateID validates a state identifier for safety and correctness.
// State names arrive from untrusted flow descriptions and end up in file
// names, DOT source and report text, so the rules are intentionally
// conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateStateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "state id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidGraph, "state id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "state id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidGraph, "state id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateOutputFilename validates an output filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateOutputFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "output filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidInput, "output filename must not contain path separators")
	}

	if strings.Contains(filename, "..") {
		return New(ErrCodeInvalidInput, "output filename must not contain path traversal")
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output filename contains invalid control characters")
		}
	}

	return nil
}
