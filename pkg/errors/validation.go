package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxBoardSize bounds each board dimension. Routing state is allocated per
// hole, so absurd sizes are rejected up front.
const MaxBoardSize = 1000

// ValidateBoardSize checks that a board has a usable number of holes.
func ValidateBoardSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidBoard, "board size must be positive, got %dx%d", width, height)
	}
	if width > MaxBoardSize || height > MaxBoardSize {
		return New(ErrCodeInvalidBoard, "board size %dx%d exceeds %dx%d", width, height, MaxBoardSize, MaxBoardSize)
	}
	return nil
}

// refRegex matches component references such as R1, U12, J_PWR or LED3A.
var refRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_+-]*$`)

// ValidateRef validates a component reference designator.
func ValidateRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidInput, "component reference cannot be empty")
	}
	if len(ref) > 64 {
		return New(ErrCodeInvalidInput, "component reference too long (max 64 characters)")
	}
	if !refRegex.MatchString(ref) {
		return New(ErrCodeInvalidInput, "invalid component reference: %q", ref)
	}
	return nil
}

// ValidateNetName validates a net name. Net names are free text but may not
// be empty, overly long, or contain control characters.
func ValidateNetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "net name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "net name too long (max 128 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "net name contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates a relative file path referenced from a project
// file (for example a footprint library next to the project).
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
		if unicode.IsControl(r) {
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

// ValidateBackendURI checks that a cache or store URI uses one of the
// supported schemes.
func ValidateBackendURI(uri string, schemes ...string) error {
	if uri == "" {
		return New(ErrCodeInvalidInput, "URI cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(uri, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URI %q must use one of the schemes: %s", uri, strings.Join(schemes, ", "))
}
