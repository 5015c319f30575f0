package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docingest/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "docingest",
	Short: "docingest - document extraction trigger handler",
	Long: `docingest receives bucket upload notifications, runs the uploaded
document through a Google Document AI processor, and writes the extracted
result to an output bucket.

Processing is idempotent: the output object name is derived from the input
name, and an existing output short-circuits the run even when the trigger
redelivers the same event.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
