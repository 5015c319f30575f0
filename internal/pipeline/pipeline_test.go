package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docingest/internal/config"
	"docingest/pkg/models"
)

func newTestPipeline(cfg *config.Config, store *fakeStore, extractor *fakeExtractor) *Pipeline {
	return New(cfg, store, extractor)
}

func seedSource(store *fakeStore, n models.Notification) {
	store.put(n.Bucket, n.Name, []byte("%PDF-1.4 fake"))
}

func TestPipelineProcessesAndCleansUp(t *testing.T) {
	cfg := testConfig()
	store := newFakeStore()
	extractor := &fakeExtractor{result: sampleResult()}
	p := newTestPipeline(cfg, store, extractor)

	n := pdfNotification()
	seedSource(store, n)

	decision, err := p.Handle(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, Proceed, decision)

	// Output written, source deleted.
	assert.True(t, store.has(cfg.OutputBucket, "invoice123.json"))
	assert.Equal(t, "application/json", store.contentType(cfg.OutputBucket, "invoice123.json"))
	assert.False(t, store.has(n.Bucket, n.Name))
}

func TestPipelineOutputContents(t *testing.T) {
	cfg := testConfig()
	store := newFakeStore()
	extractor := &fakeExtractor{
		result: &models.ExtractionResult{
			Text:        "Total: 42.00",
			ProcessorID: "proc-123",
			Entities: []models.Entity{
				{Type: "total_amount", MentionText: "42.00", Confidence: 0.91},
			},
		},
	}
	p := newTestPipeline(cfg, store, extractor)

	n := pdfNotification()
	seedSource(store, n)

	_, err := p.Handle(context.Background(), n)
	require.NoError(t, err)

	var decoded struct {
		Entities map[string][]struct {
			Value           string  `json:"value"`
			Confidence      float32 `json:"confidence"`
			NormalizedValue *string `json:"normalizedValue"`
		} `json:"entities"`
		RawText string `json:"raw_text"`
	}
	require.NoError(t, json.Unmarshal(store.get(cfg.OutputBucket, "invoice123.json"), &decoded))

	require.Len(t, decoded.Entities["total_amount"], 1)
	assert.Equal(t, "42.00", decoded.Entities["total_amount"][0].Value)
	assert.InDelta(t, 0.91, decoded.Entities["total_amount"][0].Confidence, 1e-6)
	assert.Nil(t, decoded.Entities["total_amount"][0].NormalizedValue)
	assert.Equal(t, "Total: 42.00", decoded.RawText)
}

func TestPipelineIsIdempotent(t *testing.T) {
	cfg := testConfig()
	cfg.DeleteSource = false
	store := newFakeStore()
	extractor := &fakeExtractor{result: sampleResult()}
	p := newTestPipeline(cfg, store, extractor)

	n := pdfNotification()
	seedSource(store, n)
	ctx := context.Background()

	decision, err := p.Handle(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, Proceed, decision)

	// Redelivery with a fresh delivery id: the durable existence check
	// must stop it before a second extraction call.
	redelivery := n
	redelivery.DeliveryID = "evt-2"
	decision, err = p.Handle(ctx, redelivery)
	require.NoError(t, err)
	assert.Equal(t, SkipAlreadyOutput, decision)
	assert.Equal(t, 1, extractor.callCount())
}

func TestPipelineSkipsWrongTypeWithoutExtraction(t *testing.T) {
	cfg := testConfig()
	store := newFakeStore()
	extractor := &fakeExtractor{result: sampleResult()}
	p := newTestPipeline(cfg, store, extractor)

	n := pdfNotification()
	n.ContentType = "text/csv"
	seedSource(store, n)

	decision, err := p.Handle(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, SkipWrongType, decision)
	assert.Zero(t, extractor.callCount())
	assert.False(t, store.has(cfg.OutputBucket, "invoice123.json"))
}

func TestPipelineSkipsOutputArtifactByName(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{result: sampleResult()}
	p := newTestPipeline(testConfig(), store, extractor)

	n := pdfNotification()
	n.Name = "report.json"

	decision, err := p.Handle(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, SkipAlreadyProcessedName, decision)
	assert.Zero(t, extractor.callCount())
	assert.Zero(t, store.existsCalls, "no gate beyond the name pattern may be evaluated")
}

func TestPipelineExtractionFailureLeavesSourceIntact(t *testing.T) {
	cfg := testConfig()
	store := newFakeStore()
	extractor := &fakeExtractor{err: errors.New("QUOTA_EXCEEDED")}
	p := newTestPipeline(cfg, store, extractor)

	n := pdfNotification()
	seedSource(store, n)

	_, err := p.Handle(context.Background(), n)
	require.Error(t, err)

	var stageErr *PipelineError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageExtract, stageErr.Stage)

	assert.True(t, store.has(n.Bucket, n.Name), "source must survive an extraction failure")
	assert.False(t, store.has(cfg.OutputBucket, "invoice123.json"), "no partial output may be written")
	assert.Zero(t, store.deleteCalls)
}

func TestPipelineWriteFailureLeavesSourceIntact(t *testing.T) {
	cfg := testConfig()
	store := newFakeStore()
	store.uploadErr = errors.New("bucket unavailable")
	extractor := &fakeExtractor{result: sampleResult()}
	p := newTestPipeline(cfg, store, extractor)

	n := pdfNotification()
	seedSource(store, n)

	_, err := p.Handle(context.Background(), n)
	require.Error(t, err)

	var stageErr *PipelineError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageWrite, stageErr.Stage)

	assert.True(t, store.has(n.Bucket, n.Name))
	assert.Zero(t, store.deleteCalls, "a failed write must never trigger cleanup")
}

func TestPipelineCleanupFailureIsNonFatal(t *testing.T) {
	cfg := testConfig()
	store := newFakeStore()
	store.deleteErr = errors.New("permission denied")
	extractor := &fakeExtractor{result: sampleResult()}
	p := newTestPipeline(cfg, store, extractor)

	n := pdfNotification()
	seedSource(store, n)

	decision, err := p.Handle(context.Background(), n)
	require.NoError(t, err, "output is durable, cleanup failure is a warning only")
	assert.Equal(t, Proceed, decision)
	assert.True(t, store.has(cfg.OutputBucket, "invoice123.json"))
}

func TestPipelineTextMode(t *testing.T) {
	cfg := testConfig()
	cfg.OutputFormat = config.FormatText
	cfg.DeleteSource = false
	store := newFakeStore()
	extractor := &fakeExtractor{result: sampleResult()}
	p := newTestPipeline(cfg, store, extractor)

	n := pdfNotification()
	seedSource(store, n)

	decision, err := p.Handle(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, Proceed, decision)

	assert.Equal(t, []byte("Total: 42.00"), store.get(cfg.OutputBucket, "invoice123.txt"))
	assert.Equal(t, "text/plain; charset=utf-8", store.contentType(cfg.OutputBucket, "invoice123.txt"))
	assert.True(t, store.has(n.Bucket, n.Name), "text mode deployment keeps the source")
}

func TestPipelineDownloadFailure(t *testing.T) {
	cfg := testConfig()
	store := newFakeStore()
	extractor := &fakeExtractor{result: sampleResult()}
	p := newTestPipeline(cfg, store, extractor)

	// Source object never stored: download fails.
	_, err := p.Handle(context.Background(), pdfNotification())
	require.Error(t, err)

	var stageErr *PipelineError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageDownload, stageErr.Stage)
	assert.Zero(t, extractor.callCount())
}

func TestPipelineConfigErrorDropsNotification(t *testing.T) {
	cfg := testConfig()
	cfg.OutputBucket = ""
	store := newFakeStore()
	extractor := &fakeExtractor{result: sampleResult()}
	p := newTestPipeline(cfg, store, extractor)

	n := pdfNotification()
	seedSource(store, n)

	decision, err := p.Handle(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, SkipConfigError, decision)
	assert.Zero(t, extractor.callCount())
}
