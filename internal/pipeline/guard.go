package pipeline

import (
	"context"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"docingest/internal/config"
	"docingest/internal/gcs"
	"docingest/pkg/models"
)

const (
	// AcceptedContentType is the only MIME type the pipeline processes.
	AcceptedContentType = "application/pdf"

	// ProcessedMarker in an object name indicates an output artifact.
	ProcessedMarker = "_processed"
)

// outputExtensions are the extensions of persisted artifacts. An incoming
// object carrying one of them is output from a previous run, never input.
var outputExtensions = map[string]bool{
	".json": true,
	".txt":  true,
}

// Guard decides whether a trigger notification should be processed.
//
// The trigger delivers at least once, so the same upload can arrive
// several times, possibly concurrently. The guard runs a fixed sequence
// of gates, cheapest first, and the first matching gate wins. The durable
// existence check on the deterministic output key is the authoritative
// signal; the in-memory delivery suppression only trims rapid redelivery
// within one process.
type Guard struct {
	cfg   *config.Config
	store gcs.BlobStore
	cache *dedupCache
	log   zerolog.Logger
}

// NewGuard creates a guard using the destination bucket and output format
// from cfg and the store for the durable existence check.
func NewGuard(cfg *config.Config, store gcs.BlobStore, log zerolog.Logger) *Guard {
	return &Guard{
		cfg:   cfg,
		store: store,
		cache: newDedupCache(cfg.DedupTTL),
		log:   log,
	}
}

// OutputKey computes the deterministic output object name for a source
// object: same base name, the configured output extension. Determinism is
// what makes existence-check idempotence possible.
func (g *Guard) OutputKey(sourceName string) string {
	return strings.TrimSuffix(sourceName, path.Ext(sourceName)) + g.cfg.OutputExtension()
}

// Check runs the gates in order and returns the first matching decision.
func (g *Guard) Check(ctx context.Context, n models.Notification) Decision {
	if missing := g.cfg.Missing(); len(missing) > 0 {
		g.log.Error().
			Strs("missing", missing).
			Msg("Required configuration is not set, dropping notification")
		return SkipConfigError
	}

	if n.Bucket == g.cfg.OutputBucket {
		return SkipSelfLoop
	}

	if outputExtensions[strings.ToLower(path.Ext(n.Name))] || strings.Contains(n.Name, ProcessedMarker) {
		return SkipAlreadyProcessedName
	}

	if n.ContentType != AcceptedContentType {
		return SkipWrongType
	}

	exists, err := g.store.Exists(ctx, g.cfg.OutputBucket, g.OutputKey(n.Name))
	if err != nil {
		// Existence is an optimization against rework, not a gate that may
		// drop uploads: on a failed check fall through and let the
		// idempotent write settle it.
		g.log.Warn().
			Err(err).
			Str("object", n.Name).
			Msg("Output existence check failed, proceeding")
	} else if exists {
		return SkipAlreadyOutput
	}

	if n.DeliveryID != "" {
		key := deliveryKey(n.DeliveryID, n.Bucket, n.Name)
		if g.cache.Seen(key) {
			return SkipDuplicateDelivery
		}
		g.cache.Record(key)
	}

	return Proceed
}
