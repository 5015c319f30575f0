package pipeline

import (
	"errors"
	"fmt"
)

// Pipeline stages, used in errors and failure metrics.
const (
	StageDownload = "download"
	StageExtract  = "extract"
	StageWrite    = "write"
)

// Common pipeline errors
var (
	// ErrDownloadFailed is returned when the source object cannot be read.
	ErrDownloadFailed = errors.New("source download failed")

	// ErrExtractionFailed is returned when the remote extraction call
	// fails. The source object is left intact so a redelivery can retry.
	ErrExtractionFailed = errors.New("document extraction failed")

	// ErrPersistenceFailed is returned when the output object cannot be
	// written. The source object is left intact so a redelivery can retry.
	ErrPersistenceFailed = errors.New("output write failed")
)

// PipelineError wraps a stage failure with the object it concerned.
type PipelineError struct {
	// Stage is the pipeline stage that failed.
	Stage string

	// Object is the source object being processed.
	Object string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline: %s failed for %q: %v", e.Stage, e.Object, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *PipelineError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
