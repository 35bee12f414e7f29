// Package errors defines the structured error taxonomy shared by the goa
// engine packages and the command layer.
//
// Every failure the engine reports is a *GoaError carrying a Type (the
// broad category used for exit codes and propagation policy) and a Code
// (the specific condition). Two GoaErrors compare equal under errors.Is
// when Type and Code match, so the exported sentinels below can be used
// to classify any error returned by the engine.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes.
const (
	CodeEmptyPath          = "EMPTY_PATH"
	CodeInvalidSegment     = "INVALID_SEGMENT"
	CodeUnsupportedNesting = "UNSUPPORTED_NESTING"
	CodeDuplicateParam     = "DUPLICATE_PARAM"
	CodeReservedSegment    = "RESERVED_SEGMENT"
	CodeConflict           = "CONFLICT"
	CodeNotFound           = "NOT_FOUND"
	CodeProjectNotFound    = "PROJECT_NOT_FOUND"
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeWriteFailed        = "WRITE_FAILED"
	CodeRemoveFailed       = "REMOVE_FAILED"
	CodeScanFailed         = "SCAN_FAILED"
	CodeReplaceFailed      = "REPLACE_FAILED"
	CodeFetchFailed        = "FETCH_FAILED"
	CodeBadStatus          = "BAD_STATUS"
	CodeBadPayload         = "BAD_PAYLOAD"
	CodeDownloadFailed     = "DOWNLOAD_FAILED"
)

// Sentinels for errors.Is classification.
var (
	ErrEmptyPath          = &GoaError{Type: ErrorTypeValidation, Code: CodeEmptyPath}
	ErrInvalidSegment     = &GoaError{Type: ErrorTypeValidation, Code: CodeInvalidSegment}
	ErrUnsupportedNesting = &GoaError{Type: ErrorTypeValidation, Code: CodeUnsupportedNesting}
	ErrDuplicateParam     = &GoaError{Type: ErrorTypeValidation, Code: CodeDuplicateParam}
	ErrReservedSegment    = &GoaError{Type: ErrorTypeValidation, Code: CodeReservedSegment}
	ErrConflict           = &GoaError{Type: ErrorTypeConflict, Code: CodeConflict}
	ErrNotFound           = &GoaError{Type: ErrorTypeConflict, Code: CodeNotFound}
	ErrProjectNotFound    = &GoaError{Type: ErrorTypeConfig, Code: CodeProjectNotFound}
)

// GoaError is a structured error type with context.
type GoaError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *GoaError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *GoaError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *GoaError) Is(target error) bool {
	var t *GoaError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *GoaError) WithContext(key string, value interface{}) *GoaError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// ContextKeys returns the context keys in sorted order.
func (e *GoaError) ContextKeys() []string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *GoaError {
	return &GoaError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewConflictError creates a conflict error for an existing or missing target.
func NewConflictError(code, message, path string) *GoaError {
	return (&GoaError{
		Type:    ErrorTypeConflict,
		Code:    code,
		Message: message,
	}).WithContext("path", path)
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *GoaError {
	return &GoaError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(code, message string, cause error) *GoaError {
	return &GoaError{
		Type:    ErrorTypeNetwork,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *GoaError {
	return &GoaError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *GoaError {
	return &GoaError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// TypeOf reports the ErrorType of the first GoaError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var ge *GoaError
	if errors.As(err, &ge) {
		return ge.Type, true
	}

	return "", false
}

// IsValidation checks if an error is a user-correctable input error.
func IsValidation(err error) bool {
	t, ok := TypeOf(err)
	return ok && t == ErrorTypeValidation
}

// IsConflict checks if an error reports an existing or missing target.
func IsConflict(err error) bool {
	t, ok := TypeOf(err)
	return ok && t == ErrorTypeConflict
}

// IsNetwork checks if an error came from the version feed or a download.
func IsNetwork(err error) bool {
	t, ok := TypeOf(err)
	return ok && t == ErrorTypeNetwork
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	t, ok := TypeOf(err)
	if !ok {
		return 1
	}

	switch t {
	case ErrorTypeValidation:
		return 2
	case ErrorTypeConflict:
		return 3
	case ErrorTypeIO:
		return 4
	case ErrorTypeConfig:
		return 5
	default:
		return 1
	}
}
