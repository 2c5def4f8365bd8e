// Package apperr defines the application error taxonomy.
// Validation and model errors propagate up to the recover boundary at the UI
// action layer; they are never retried inside a model's own pipeline.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports bad or empty user input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// NewValidation creates a ValidationError.
func NewValidation(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ModelLoadError reports that a model's weights or backing service could not
// be fetched.
type ModelLoadError struct {
	Model string
	Err   error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("model %q failed to load: %v", e.Model, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

// NewModelLoad creates a ModelLoadError wrapping err.
func NewModelLoad(model string, err error) error {
	return &ModelLoadError{Model: model, Err: err}
}

// IsModelLoad reports whether err is (or wraps) a ModelLoadError.
func IsModelLoad(err error) bool {
	var me *ModelLoadError
	return errors.As(err, &me)
}

// InvalidInputError reports a shape/type contract violation on a model's
// process input.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// NewInvalidInput creates an InvalidInputError.
func NewInvalidInput(reason string) error {
	return &InvalidInputError{Reason: reason}
}

// IsInvalidInput reports whether err is (or wraps) an InvalidInputError.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

// FileIOError reports a failure loading or saving a file.
type FileIOError struct {
	Op   string // "load", "save", "browse"
	Path string
	Err  error
}

func (e *FileIOError) Error() string {
	return fmt.Sprintf("file %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *FileIOError) Unwrap() error {
	return e.Err
}

// NewFileIO creates a FileIOError wrapping err.
func NewFileIO(op, path string, err error) error {
	return &FileIOError{Op: op, Path: path, Err: err}
}

// IsFileIO reports whether err is (or wraps) a FileIOError.
func IsFileIO(err error) bool {
	var fe *FileIOError
	return errors.As(err, &fe)
}
