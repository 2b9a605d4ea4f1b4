// Package errors defines the domain error taxonomy for the meeting
// automation pipeline.
//
// Each pipeline stage wraps provider-specific failures into one of the
// sentinel errors below so callers can classify failures with errors.Is
// without inspecting provider error strings. The HTTP layer maps each
// sentinel to a response status via HTTPStatus.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation indicates invalid request input.
	ErrValidation = errors.New("validation error")

	// ErrUpload indicates a rejected file upload (size, count or type).
	ErrUpload = errors.New("upload error")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTranscription indicates the speech-to-text step failed.
	ErrTranscription = errors.New("transcription error")

	// ErrStructuring indicates the completion provider returned output
	// that could not be parsed into the expected meeting structure.
	ErrStructuring = errors.New("structuring error")

	// ErrRender indicates a document artifact could not be written.
	ErrRender = errors.New("render error")

	// ErrPersistence indicates a datastore read or write failed.
	ErrPersistence = errors.New("persistence error")

	// ErrPublication indicates a wiki or webhook delivery failed.
	ErrPublication = errors.New("publication error")
)

// Wrap annotates a sentinel with stage-specific detail while keeping the
// sentinel reachable through errors.Is.
func Wrap(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation
// or ErrUpload.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrUpload)
}

// HTTPStatus returns the response status code for a domain error.
// Unknown errors default to 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUpload):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
