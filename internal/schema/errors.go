package schema

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error codes for schema loading and validation.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeFormat       = "E002" // Unsupported file extension
	ErrCodeLoadFailed   = "E004" // File could not be read or parsed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeBuildFailed  = "E006" // CUE build failed
	ErrCodeMissingField = "E007" // Required top-level field absent

	ErrCodeInvalidName    = "E201" // Empty database, store or index name
	ErrCodeInvalidVersion = "E202" // Version below 1
	ErrCodeDuplicateStore = "E203" // Two stores with the same name
	ErrCodeDuplicateIndex = "E204" // Two indexes with the same name in a store
	ErrCodeInvalidKeyPath = "E205" // Index without a key path
)

// LoadError represents an error that occurred while loading or validating
// a definition.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsLoadError reports whether err is a *LoadError, returning it if so.
func IsLoadError(err error) (*LoadError, bool) {
	var le *LoadError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

func newLoadError(code, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...)}
}
