package simpleresource

import (
	"errors"
	"fmt"

	platerrors "github.com/jmgilman/go/errors"
)

// Error types
var (
	// ErrInvalidRequest indicates a required field is missing or malformed
	ErrInvalidRequest = platerrors.New(platerrors.CodeInvalidInput, "invalid request")

	// ErrInvalidName indicates a resource name that is not a plain base name
	ErrInvalidName = platerrors.Wrap(ErrInvalidRequest, platerrors.CodeInvalidInput, "invalid resource name")

	// ErrUnknownFamily indicates a family without a registered format
	ErrUnknownFamily = platerrors.Wrap(ErrInvalidRequest, platerrors.CodeInvalidInput, "unknown resource family")

	// ErrAlreadyExists indicates a create against a name that is already stored
	ErrAlreadyExists = platerrors.New(platerrors.CodeAlreadyExists, "resource already exists")

	// ErrNotFound indicates the resource is absent from the backend
	ErrNotFound = platerrors.New(platerrors.CodeNotFound, "resource not found")

	// ErrInvalidContent indicates content rejected by the family validator
	ErrInvalidContent = platerrors.New(platerrors.CodeSchemaFailed, "invalid content")

	// ErrBackend indicates an I/O failure in the storage backend. It is the
	// only retryable kind.
	ErrBackend = platerrors.New(platerrors.CodeUnavailable, "storage backend failure")
)

// FieldError reports a missing or unusable request field
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("the %s field %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidRequest
}

// ValidationError reports why content failed its family validator
type ValidationError struct {
	Family Family
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("content is not valid %s: %s", e.Family, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidContent
}

// ResourceError represents an error related to a resource operation
type ResourceError struct {
	Op     string
	Family Family
	Name   string
	Err    error
}

func (e *ResourceError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("resource operation %s failed for family %s: %v", e.Op, e.Family, e.Err)
	}
	return fmt.Sprintf("resource operation %s failed for %s resource %q: %v", e.Op, e.Family, e.Name, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// backendError marks err as a storage failure while keeping it in the chain
func backendError(err error) error {
	return fmt.Errorf("%w: %w", ErrBackend, err)
}

// StatusOf maps an error returned by the service onto the status taxonomy
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrInvalidRequest):
		return StatusValidationFailed
	case errors.Is(err, ErrAlreadyExists):
		return StatusConflict
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	case errors.Is(err, ErrInvalidContent):
		return StatusUnsupportedContent
	default:
		return StatusInternalFailure
	}
}

// MessageOf returns the caller-facing message for err. Backend details are
// never included.
func MessageOf(err error) string {
	var fieldErr *FieldError
	var validationErr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fieldErr):
		return fieldErr.Error()
	case errors.Is(err, ErrInvalidName):
		return "invalid file name"
	case errors.Is(err, ErrUnknownFamily):
		return "unknown resource family"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid request"
	case errors.Is(err, ErrAlreadyExists):
		return "file already exists"
	case errors.Is(err, ErrNotFound):
		return "file does not exist"
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.Is(err, ErrInvalidContent):
		return "invalid content"
	default:
		return "storage operation failed"
	}
}

// ResultFromError builds the Result a transport renders for a failed operation
func ResultFromError(err error) *Result {
	return &Result{
		Status:  StatusOf(err),
		Message: MessageOf(err),
	}
}

// IsRetryable reports whether a caller may retry the failed operation.
// Only backend failures qualify.
func IsRetryable(err error) bool {
	return platerrors.IsRetryable(err)
}
