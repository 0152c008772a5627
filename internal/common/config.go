package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Journal   JournalConfig   `yaml:"journal"`
	Templates TemplatesConfig `yaml:"templates"`
	LLM       LLMConfig       `yaml:"llm"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
}

// JournalConfig holds run-journal configuration
type JournalConfig struct {
	Path        string        `yaml:"path"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// TemplatesConfig holds the fixed spreadsheet template locations. The
// templates used to be embedded constants in the tool; they are injected
// here so tests can run against fixtures.
type TemplatesConfig struct {
	UploadFile string `yaml:"upload_file"`
	FinalSheet string `yaml:"final_sheet"`
}

// LLMConfig holds enrichment-service configuration
type LLMConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	CleanerAgentID string        `yaml:"cleaner_agent_id"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxAttempts    int           `yaml:"max_attempts"`
	BackoffBase    time.Duration `yaml:"backoff_base"`
}

// PipelineConfig holds orchestration tuning
type PipelineConfig struct {
	EnrichWorkers int `yaml:"enrich_workers"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Journal: JournalConfig{
			Path:        getEnv("RFQPROC_JOURNAL", "./rfqproc.db"),
			BusyTimeout: getEnvAsDuration("RFQPROC_JOURNAL_BUSY_TIMEOUT", 5*time.Second),
		},
		Templates: TemplatesConfig{
			UploadFile: getEnv("RFQPROC_UPLOAD_TEMPLATE", "upload file - HTS.xlsx"),
			FinalSheet: getEnv("RFQPROC_FINAL_TEMPLATE", "FINAL SHEET.xlsx"),
		},
		LLM: LLMConfig{
			BaseURL:        getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
			APIKey:         getEnv("MISTRAL_API_KEY", ""),
			Model:          getEnv("MISTRAL_MODEL", "mistral-large-latest"),
			CleanerAgentID: getEnv("MISTRAL_CLEANER_AGENT_ID", ""),
			Timeout:        getEnvAsDuration("MISTRAL_TIMEOUT", 45*time.Second),
			MaxAttempts:    getEnvAsInt("MISTRAL_MAX_ATTEMPTS", 3),
			BackoffBase:    getEnvAsDuration("MISTRAL_BACKOFF_BASE", 500*time.Millisecond),
		},
		Pipeline: PipelineConfig{
			EnrichWorkers: getEnvAsInt("RFQPROC_ENRICH_WORKERS", 4),
		},
	}
}

// LoadConfigFile overlays values from a YAML file onto an env-derived
// config. A missing file is not an error so the CLI works with defaults.
func LoadConfigFile(path string) (*Config, error) {
	cfg := LoadConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, WrapError(err, "read config file")
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, WrapError(err, fmt.Sprintf("parse config file %s", path))
	}
	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Templates.UploadFile == "" {
		return NewAppError("CONFIG_ERROR", "upload file template path is required", ErrInvalidInput)
	}
	if c.Templates.FinalSheet == "" {
		return NewAppError("CONFIG_ERROR", "final sheet template path is required", ErrInvalidInput)
	}
	if c.LLM.MaxAttempts <= 0 {
		return NewAppError("CONFIG_ERROR", "llm max_attempts must be positive", ErrInvalidInput)
	}
	return nil
}
