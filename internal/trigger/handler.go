// Package trigger receives bucket upload events over HTTP and feeds them
// to the processing pipeline.
//
// The hosting trigger infrastructure (Cloud Functions 2nd gen, Cloud Run)
// posts the storage event as JSON. The handler always answers 204 with an
// empty body, whatever the processing outcome: surfacing errors
// synchronously would only provoke infrastructure-level redelivery storms.
// Outcomes are observable via logs, metrics, and the presence or absence
// of output objects.
package trigger

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docingest/internal/logger"
	"docingest/internal/metrics"
	"docingest/internal/pipeline"
	"docingest/pkg/models"
)

// Event is the storage notification payload delivered in the request body.
type Event struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	EventID     string `json:"eventId"`
}

// deliveryHeader carries the CloudEvents delivery id on Eventarc pushes.
const deliveryHeader = "Ce-Id"

// Processor is the slice of the pipeline the adapter needs.
type Processor interface {
	Handle(ctx context.Context, n models.Notification) (pipeline.Decision, error)
}

// Handler adapts HTTP-delivered storage events to pipeline notifications.
type Handler struct {
	pipeline Processor
}

// NewHandler creates an adapter around a constructed pipeline.
func NewHandler(p Processor) *Handler {
	return &Handler{pipeline: p}
}

// Router builds the HTTP surface: the trigger endpoint plus health and
// metrics endpoints.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/", h.HandleEvent)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// HandleEvent normalizes one inbound delivery and invokes the pipeline.
// It responds 204 with an empty body regardless of the internal outcome.
func (h *Handler) HandleEvent(c *gin.Context) {
	metrics.NotificationsTotal.Inc()

	requestID := uuid.NewString()

	var event Event
	if err := c.ShouldBindJSON(&event); err != nil {
		log := logger.WithDelivery(requestID, "")
		log.Warn().
			Err(err).
			Msg("Malformed trigger payload, dropping")
		c.Status(http.StatusNoContent)
		return
	}

	// The delivery id may arrive in the body or as a CloudEvents header;
	// normalize both sources into one value, body first.
	deliveryID := event.EventID
	if deliveryID == "" {
		deliveryID = c.GetHeader(deliveryHeader)
	}

	log := logger.WithDelivery(requestID, deliveryID)

	n := models.Notification{
		Bucket:      event.Bucket,
		Name:        event.Name,
		ContentType: event.ContentType,
		DeliveryID:  deliveryID,
	}

	decision, err := h.pipeline.Handle(c.Request.Context(), n)
	if err != nil {
		log.Error().
			Err(err).
			Str("object", n.Name).
			Msg("Processing failed, source left intact for retry")
	} else if decision == pipeline.Proceed {
		log.Info().
			Str("object", n.Name).
			Msg("Processing completed")
	}

	c.Status(http.StatusNoContent)
}
