package models

import "time"

// Notification describes one delivery of "a file appeared in a bucket".
// It is built by the trigger adapter from the inbound event payload and
// consumed by exactly one pipeline invocation.
type Notification struct {
	Bucket      string // Source bucket the object landed in
	Name        string // Object path within the bucket
	ContentType string // MIME type reported by the event
	DeliveryID  string // Delivery attempt identifier; may be empty, may repeat on redelivery
}

// Entity is a single typed value extracted from a document.
type Entity struct {
	Type            string  // Document AI entity type (e.g., "total_amount")
	MentionText     string  // Raw text as it appears in the document
	Confidence      float32 // Extraction confidence (0.0-1.0)
	NormalizedValue *string // Normalized representation, nil when the service provides none
}

// PageDimension holds the physical dimensions of an extracted page.
type PageDimension struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	Unit   string  `json:"unit"`
}

// ExtractionResult is the outcome of one Document AI process call.
// It is immutable once returned; the pipeline transforms it into the
// persisted output record and discards it.
type ExtractionResult struct {
	// Text is the full extracted text in reading order.
	Text string

	// Pages holds per-page dimensions, in page order.
	Pages []PageDimension

	// Entities are the typed entities in the order the service returned them.
	Entities []Entity

	// ProcessorID is the processor that produced this result.
	ProcessorID string

	// Duration is how long the remote processing took.
	Duration time.Duration
}
