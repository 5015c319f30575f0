package config

import (
	"os"
	"strconv"
	"time"

	"docingest/internal/logger"
)

// Output format selection. The handler persists either a structured JSON
// record or the raw extracted text, never both.
const (
	FormatJSON = "json"
	FormatText = "text"
)

type Config struct {
	// Google Cloud Configuration (required, no defaults)
	ProjectID    string
	Location     string // Document AI processor location, e.g. "eu" or "us"
	ProcessorID  string
	OutputBucket string

	// Processing behavior
	OutputFormat string // "json" or "text"
	DeleteSource bool   // remove the source object after a successful write
	DedupTTL     time.Duration

	// HTTP Configuration
	Port string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads configuration from the environment. Missing required values
// do not fail the load: the handler must keep accepting trigger deliveries
// and skip them with a config-error decision, so completeness is checked
// per notification via Missing.
func Load() *Config {
	outputFormat := getEnv("OUTPUT_FORMAT", FormatJSON)

	return &Config{
		ProjectID:    getEnv("GCP_PROJECT", ""),
		Location:     getEnv("PROCESSOR_LOCATION", ""),
		ProcessorID:  getEnv("PROCESSOR_ID", ""),
		OutputBucket: getEnv("OUTPUT_BUCKET", ""),

		OutputFormat: outputFormat,
		// Each output format mirrors one deployment variant: the JSON
		// variant cleans up its source, the plain-text variant keeps it.
		DeleteSource: getEnvBool("DELETE_SOURCE", outputFormat != FormatText),
		DedupTTL:     time.Duration(getEnvInt("DEDUP_TTL_SECONDS", 600)) * time.Second,

		Port: getEnv("PORT", "8080"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}
}

// Missing returns the names of required settings that are not set.
// An empty result means the configuration is complete.
func (c *Config) Missing() []string {
	var missing []string
	if c.ProjectID == "" {
		missing = append(missing, "GCP_PROJECT")
	}
	if c.Location == "" {
		missing = append(missing, "PROCESSOR_LOCATION")
	}
	if c.ProcessorID == "" {
		missing = append(missing, "PROCESSOR_ID")
	}
	if c.OutputBucket == "" {
		missing = append(missing, "OUTPUT_BUCKET")
	}
	return missing
}

// OutputExtension returns the file extension of the persisted artifact
// for the configured output format.
func (c *Config) OutputExtension() string {
	if c.OutputFormat == FormatText {
		return ".txt"
	}
	return ".json"
}

// GetLoggerConfig returns a logger configuration from the main config.
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
