package errors

import (
	"errors"
	"maps"
)

// Wrap wraps an error with additional context, creating a GoaError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *GoaError {
	if err == nil {
		return nil
	}

	// Copy the original context when re-wrapping a GoaError
	var ge *GoaError
	if errors.As(err, &ge) {
		return &GoaError{
			Type:    errType,
			Code:    code,
			Message: message,
			Cause:   ge,
			Context: maps.Clone(ge.Context),
		}
	}

	return &GoaError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *GoaError {
	return Wrap(err, ErrorTypeIO, code, message)
}

// WrapNetwork wraps an error as a network error
func WrapNetwork(err error, code, message string) *GoaError {
	return Wrap(err, ErrorTypeNetwork, code, message)
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *GoaError {
	return Wrap(err, ErrorTypeConfig, code, message)
}

// PartialWriteError reports a multi-file creation that failed after some
// files were already written. The written files are left in place.
type PartialWriteError struct {
	Created []string
	Err     error
}

// Error implements the error interface.
func (p *PartialWriteError) Error() string {
	return p.Err.Error()
}

// Unwrap returns the failure that interrupted the creation.
func (p *PartialWriteError) Unwrap() error {
	return p.Err
}

// CreatedFiles returns the files written before the failure, if err is a
// PartialWriteError.
func CreatedFiles(err error) []string {
	var pw *PartialWriteError
	if errors.As(err, &pw) {
		return pw.Created
	}

	return nil
}
