package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"docingest/internal/config"
	"docingest/internal/extract"
	"docingest/internal/gcs"
	"docingest/internal/logger"
	"docingest/internal/pipeline"
	"docingest/internal/trigger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP trigger handler",
	Long: `Start the HTTP server that accepts bucket upload notifications and
processes each uploaded document with Google Document AI.

Required environment variables:
  GCP_PROJECT        - Google Cloud project ID
  PROCESSOR_LOCATION - Document AI processor location (e.g. "eu" or "us")
  PROCESSOR_ID       - Document AI processor ID
  OUTPUT_BUCKET      - Bucket the extracted results are written to

Credentials come from GOOGLE_APPLICATION_CREDENTIALS, GOOGLE_CREDENTIALS,
or the hosting environment's default credentials.

A missing required variable does not stop the server: deliveries are
accepted and dropped with a logged configuration error, so the trigger
infrastructure is never driven into redelivery storms.`,
	Example: `  # Serve on the default port 8080
  docingest serve

  # Plain-text output on a custom port; text mode keeps the source
  # object unless DELETE_SOURCE=true is set explicitly
  PORT=9090 OUTPUT_FORMAT=text docingest serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")
	ctx := context.Background()

	cfg := config.Load()
	if missing := cfg.Missing(); len(missing) > 0 {
		log.Warn().
			Strs("missing", missing).
			Msg("Configuration incomplete, notifications will be dropped until it is fixed")
	}

	store, err := gcs.NewStore(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create storage client")
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close storage client")
		}
	}()

	extractor, err := extract.NewDocumentAIExtractor(ctx, extract.Config{
		ProjectID:   cfg.ProjectID,
		Location:    cfg.Location,
		ProcessorID: cfg.ProcessorID,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Document AI client")
		return fmt.Errorf("failed to create Document AI client: %w", err)
	}
	defer func() {
		if closeErr := extractor.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close Document AI client")
		}
	}()

	p := pipeline.New(cfg, store, extractor)
	router := trigger.NewHandler(p).Router()

	addr := ":" + cfg.Port
	log.Info().
		Str("addr", addr).
		Str("output_bucket", cfg.OutputBucket).
		Str("output_format", cfg.OutputFormat).
		Bool("delete_source", cfg.DeleteSource).
		Msg("Starting trigger handler")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("HTTP server stopped")
		return fmt.Errorf("http server stopped: %w", err)
	}
	return nil
}
