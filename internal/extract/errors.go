package extract

import (
	"errors"
	"fmt"
)

// Common extraction errors
var (
	// ErrDocumentTooLarge is returned when the document exceeds the
	// synchronous processing size limit.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size limit")

	// ErrInvalidDocument is returned when the content cannot be processed
	// by Document AI (corrupted or unsupported format).
	ErrInvalidDocument = errors.New("invalid or corrupted document")

	// ErrProcessingFailed is returned when Document AI processing fails.
	ErrProcessingFailed = errors.New("document AI processing failed")

	// ErrMissingCredentials is returned when Google Cloud credentials are not configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials")

	// ErrProcessorNotFound is returned when the configured processor
	// cannot be found or accessed.
	ErrProcessorNotFound = errors.New("document AI processor not found")

	// ErrQuotaExceeded is returned when Document AI API quota limits are exceeded.
	ErrQuotaExceeded = errors.New("document AI API quota exceeded")

	// ErrPermissionDenied is returned when the credentials lack Document AI access.
	ErrPermissionDenied = errors.New("insufficient permissions for Document AI")
)

// ExtractError wraps errors with additional context about the extraction failure.
type ExtractError struct {
	// Op is the operation that failed (e.g., "Process").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ExtractError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("extract: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("extract: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExtractError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapExtractError wraps an error as an ExtractError if it isn't already one.
func WrapExtractError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var extractErr *ExtractError
	if errors.As(err, &extractErr) {
		return err // Already wrapped
	}

	return &ExtractError{Op: op, Err: err, Details: details}
}
