// Package extract provides document understanding using Google Document AI.
//
// It sends raw document bytes to a configured Document AI processor and
// returns the extracted text, page dimensions, and typed entities with
// confidence scores.
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//
// Document AI API Limitations:
//   - Maximum file size: 20MB for synchronous processing
//   - Supported formats: PDF, TIFF, GIF, JPEG, PNG, BMP, WEBP
//   - Processing time: Typically 5-15 seconds per document
//   - Quota limits apply (check Google Cloud Console)
//
// The API endpoint is selected by the processor location: "eu" and "us"
// map to their regional endpoints, other locations follow the generic
// <location>-documentai.googleapis.com pattern.
package extract

import (
	"context"
	"time"

	"docingest/pkg/models"
)

// Extractor defines the interface for document extraction services.
type Extractor interface {
	// Process extracts structured content from raw document bytes.
	// The mimeType tells the service how to decode the content.
	Process(ctx context.Context, content []byte, mimeType string) (*models.ExtractionResult, error)
}

// Config holds configuration for Google Document AI processing.
type Config struct {
	// ProjectID is the Google Cloud project ID where Document AI is enabled.
	ProjectID string

	// Location is the processor location (e.g., "us", "eu").
	// Determines the regional API endpoint.
	Location string

	// ProcessorID is the Document AI processor ID.
	ProcessorID string

	// Timeout is the maximum time to wait for one process call.
	// Default: 60 seconds.
	Timeout time.Duration
}

// DefaultTimeout is applied when Config.Timeout is zero.
const DefaultTimeout = 60 * time.Second
