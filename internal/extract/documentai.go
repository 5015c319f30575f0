package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"docingest/internal/logger"
	"docingest/pkg/models"
)

// MaxDocumentSizeBytes is the maximum document size for synchronous processing (20MB)
const MaxDocumentSizeBytes = 20 * 1024 * 1024

// DocumentAIExtractor implements Extractor using Google Document AI.
type DocumentAIExtractor struct {
	client *documentai.DocumentProcessorClient
	config Config
	log    zerolog.Logger
}

// Endpoint returns the Document AI API endpoint for a processor location.
// The two well-known multi-regions map to explicit endpoints; any other
// location follows the generic regional pattern.
func Endpoint(location string) string {
	switch location {
	case "eu":
		return "eu-documentai.googleapis.com:443"
	case "us":
		return "us-documentai.googleapis.com:443"
	default:
		return fmt.Sprintf("%s-documentai.googleapis.com:443", location)
	}
}

// NewDocumentAIExtractor creates an extractor with credentials from the
// environment. The client is pinned to the regional endpoint matching
// config.Location so requests reach the region the processor lives in.
func NewDocumentAIExtractor(ctx context.Context, config Config) (*DocumentAIExtractor, error) {
	const op = "NewDocumentAIExtractor"

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	clientOptions := []option.ClientOption{
		option.WithEndpoint(Endpoint(config.Location)),
	}
	hasCredentials := false
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
		hasCredentials = true
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
		hasCredentials = true
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if !hasCredentials {
			return nil, WrapExtractError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapExtractError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return &DocumentAIExtractor{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}, nil
}

// NewDocumentAIExtractorWithClient creates an extractor with an explicit client (for testing).
func NewDocumentAIExtractorWithClient(config Config, client *documentai.DocumentProcessorClient) *DocumentAIExtractor {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	return &DocumentAIExtractor{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}
}

// Process extracts structured content from raw document bytes.
func (e *DocumentAIExtractor) Process(ctx context.Context, content []byte, mimeType string) (*models.ExtractionResult, error) {
	const op = "Process"

	if len(content) > MaxDocumentSizeBytes {
		return nil, WrapExtractError(op, ErrDocumentTooLarge, fmt.Sprintf("file size: %d bytes", len(content)))
	}

	// Reject mislabeled or corrupt PDFs locally instead of burning a
	// remote call on them.
	if mimeType == "application/pdf" && (len(content) < 4 || string(content[:4]) != "%PDF") {
		return nil, WrapExtractError(op, ErrInvalidDocument, "missing PDF header")
	}

	processCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: e.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: mimeType,
			},
		},
	}

	start := time.Now()
	resp, err := e.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, e.handleProcessingError(op, err)
	}
	if resp.Document == nil {
		return nil, WrapExtractError(op, ErrProcessingFailed, "no document in response")
	}

	result := e.buildResult(resp.Document)
	result.Duration = time.Since(start)

	e.log.Info().
		Str("processor_id", e.config.ProcessorID).
		Int("characters", len(result.Text)).
		Int("entities", len(result.Entities)).
		Int("pages", len(result.Pages)).
		Dur("duration", result.Duration).
		Msg("Document processed")

	return result, nil
}

// processorName constructs the full processor resource name for the API.
func (e *DocumentAIExtractor) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		e.config.ProjectID, e.config.Location, e.config.ProcessorID)
}

// buildResult converts the Document AI response into the extraction model.
func (e *DocumentAIExtractor) buildResult(doc *documentaipb.Document) *models.ExtractionResult {
	result := &models.ExtractionResult{
		Text:        doc.Text,
		ProcessorID: e.config.ProcessorID,
	}

	for _, page := range doc.Pages {
		if dim := page.GetDimension(); dim != nil {
			result.Pages = append(result.Pages, models.PageDimension{
				Width:  dim.Width,
				Height: dim.Height,
				Unit:   dim.Unit,
			})
		}
	}

	for _, entity := range doc.Entities {
		ent := models.Entity{
			Type:        entity.Type,
			MentionText: strings.TrimSpace(entity.MentionText),
			Confidence:  entity.Confidence,
		}
		if nv := entity.GetNormalizedValue(); nv != nil && nv.Text != "" {
			text := nv.Text
			ent.NormalizedValue = &text
		}
		result.Entities = append(result.Entities, ent)
	}

	return result
}

// handleProcessingError converts Document AI errors to the package's error taxonomy.
func (e *DocumentAIExtractor) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return WrapExtractError(op, ErrPermissionDenied, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") || strings.Contains(errStr, "RESOURCE_EXHAUSTED"):
		return WrapExtractError(op, ErrQuotaExceeded, "Document AI API quota exceeded")
	case strings.Contains(errStr, "NOT_FOUND"):
		return WrapExtractError(op, ErrProcessorNotFound, fmt.Sprintf("processor not found: %s", e.config.ProcessorID))
	case strings.Contains(errStr, "INVALID_ARGUMENT"):
		return WrapExtractError(op, ErrInvalidDocument, "document format not supported or corrupted")
	case strings.Contains(errStr, "DeadlineExceeded") || strings.Contains(errStr, "context deadline exceeded"):
		return WrapExtractError(op, context.DeadlineExceeded, "processing timeout")
	default:
		return WrapExtractError(op, ErrProcessingFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}

// Close closes the underlying Document AI client.
func (e *DocumentAIExtractor) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
