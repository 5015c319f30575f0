// Package pipeline implements the idempotent processing of bucket upload
// notifications: a dedup guard deciding whether a delivery needs work at
// all, and the download → extract → persist → cleanup sequence.
//
// The trigger delivers at least once and invocations may run concurrently,
// so the same source object can be handled twice. Safety comes from the
// deterministic output key plus the durable existence check, not from
// locking: two racing invocations can both pass the existence check and
// both extract, but the final write is deterministic and overwrites
// harmlessly. That time-of-check-to-time-of-use window is an accepted
// inefficiency, not a correctness violation.
//
// There is no resume checkpointing. Any failure before the output write
// completes leaves the source object untouched, and the next delivery
// starts the whole sequence over.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"docingest/internal/config"
	"docingest/internal/extract"
	"docingest/internal/gcs"
	"docingest/internal/logger"
	"docingest/internal/metrics"
	"docingest/pkg/models"
)

// Pipeline orchestrates processing of one trigger notification at a time.
// It is safe for concurrent use; the only shared mutable state is the
// guard's delivery cache, which synchronizes internally.
type Pipeline struct {
	cfg       *config.Config
	store     gcs.BlobStore
	extractor extract.Extractor
	guard     *Guard
	log       zerolog.Logger
	now       func() time.Time
}

// New constructs a pipeline with injected storage and extraction clients.
func New(cfg *config.Config, store gcs.BlobStore, extractor extract.Extractor) *Pipeline {
	log := logger.WithComponent("pipeline")
	return &Pipeline{
		cfg:       cfg,
		store:     store,
		extractor: extractor,
		guard:     NewGuard(cfg, store, log),
		log:       log,
		now:       time.Now,
	}
}

// Handle runs the guard and, on Proceed, the processing sequence for one
// notification. The returned error is nil for every skip decision; a
// non-nil error always carries a *PipelineError identifying the failed
// stage, and in every failure case the source object is left untouched.
func (p *Pipeline) Handle(ctx context.Context, n models.Notification) (Decision, error) {
	log := p.log.With().
		Str("bucket", n.Bucket).
		Str("object", n.Name).
		Logger()

	decision := p.guard.Check(ctx, n)
	metrics.DecisionsTotal.WithLabelValues(decision.String()).Inc()

	if decision != Proceed {
		log.Info().
			Stringer("decision", decision).
			Str("content_type", n.ContentType).
			Msg("Skipping notification")
		return decision, nil
	}

	if err := p.run(ctx, n, log); err != nil {
		var stageErr *PipelineError
		if errors.As(err, &stageErr) {
			metrics.FailuresTotal.WithLabelValues(stageErr.Stage).Inc()
		}
		return decision, err
	}

	metrics.ProcessedTotal.Inc()
	return decision, nil
}

// run executes download → extract → persist → cleanup. Cleanup is gated
// strictly on a successful write and its failure is a warning only: the
// output is already durable at that point.
func (p *Pipeline) run(ctx context.Context, n models.Notification, log zerolog.Logger) error {
	log.Info().Msg("File detected, starting processing")

	content, err := p.store.Download(ctx, n.Bucket, n.Name)
	if err != nil {
		return &PipelineError{Stage: StageDownload, Object: n.Name, Err: err}
	}

	result, err := p.extractor.Process(ctx, content, n.ContentType)
	if err != nil {
		// Fatal for this invocation, retryable by redelivery. No partial
		// output is written and the source object stays in place.
		return &PipelineError{Stage: StageExtract, Object: n.Name, Err: err}
	}

	log.Info().
		Int("characters", len(result.Text)).
		Int("entities", len(result.Entities)).
		Msg("Document extracted")

	data, contentType, err := p.encode(n.Name, result)
	if err != nil {
		return &PipelineError{Stage: StageWrite, Object: n.Name, Err: err}
	}

	outputKey := p.guard.OutputKey(n.Name)
	if err := p.store.Upload(ctx, p.cfg.OutputBucket, outputKey, data, contentType); err != nil {
		return &PipelineError{Stage: StageWrite, Object: n.Name, Err: err}
	}

	log.Info().
		Str("output_bucket", p.cfg.OutputBucket).
		Str("output_object", outputKey).
		Msg("Result persisted")

	if p.cfg.DeleteSource {
		if err := p.store.Delete(ctx, n.Bucket, n.Name); err != nil {
			log.Warn().
				Err(err).
				Msg("Source cleanup failed, output is already persisted")
		}
	}

	return nil
}

// encode renders the extraction result in the configured output format.
func (p *Pipeline) encode(sourceName string, result *models.ExtractionResult) ([]byte, string, error) {
	if p.cfg.OutputFormat == config.FormatText {
		return []byte(result.Text), "text/plain; charset=utf-8", nil
	}

	record := BuildOutputRecord(sourceName, result, p.now())
	data, err := record.Encode()
	if err != nil {
		return nil, "", err
	}
	return data, "application/json", nil
}

// OutputKey exposes the deterministic output naming for callers that need
// to reason about artifacts, e.g. operational tooling and tests.
func (p *Pipeline) OutputKey(sourceName string) string {
	return p.guard.OutputKey(sourceName)
}
