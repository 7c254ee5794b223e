package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes of a run
var (
	ErrInputLayout       = errors.New("invalid input layout")
	ErrIO                = errors.New("i/o failure")
	ErrExternalTool      = errors.New("external tool failure")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// FileError ties a failure to the stage and file that produced it.
type FileError struct {
	Stage string
	Path  string
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// WrapFile returns nil for a nil err, otherwise a *FileError.
func WrapFile(stage, path string, err error) error {
	if err == nil {
		return nil
	}
	return &FileError{Stage: stage, Path: path, Err: err}
}

// IOf wraps err as ErrIO with a short operation description.
func IOf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", fmt.Sprintf(format, args...), ErrIO, err)
}
