package common

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const configPathEnv = "DOCRECON_CONFIG"

// Config holds all application configuration
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Poll    PollConfig    `yaml:"poll"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Export  ExportConfig  `yaml:"export"`
	Prompts PromptConfig  `yaml:"prompts"`
}

// ServiceConfig describes the external document-processing service.
type ServiceConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// PollConfig holds the two timer periods driving the job lifecycle tracker.
type PollConfig struct {
	StatusInterval time.Duration `yaml:"statusInterval"`
	RosterInterval time.Duration `yaml:"rosterInterval"`
}

// IngestConfig describes the drop folder watched for new PDFs.
type IngestConfig struct {
	Root     string        `yaml:"root"`
	Debounce time.Duration `yaml:"debounce"`
}

// ExportConfig holds export output settings.
type ExportConfig struct {
	OutputDir string `yaml:"outputDir"`
}

// PromptConfig carries the prompts sent with every submission.
type PromptConfig struct {
	SystemPrompt string `yaml:"systemPrompt"`
	UserPrompt   string `yaml:"userPrompt"`
}

// LoadConfig reads the optional YAML file named by DOCRECON_CONFIG and applies
// environment overrides on top of built-in defaults.
func LoadConfig() *Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 45 * time.Second,
		},
		Poll: PollConfig{
			StatusInterval: 3 * time.Second,
			RosterInterval: 10 * time.Second,
		},
		Ingest: IngestConfig{
			Root:     "./inbox",
			Debounce: 2 * time.Second,
		},
		Export: ExportConfig{
			OutputDir: "./exports",
		},
		Prompts: PromptConfig{
			SystemPrompt: DefaultSystemPrompt,
			UserPrompt:   DefaultUserPrompt,
		},
	}
}

func (c *Config) applyEnvOverrides() {
	c.Service.BaseURL = getEnv("DOCRECON_SERVICE_URL", c.Service.BaseURL)
	c.Service.Timeout = getEnvAsDuration("DOCRECON_SERVICE_TIMEOUT", c.Service.Timeout)
	c.Poll.StatusInterval = getEnvAsDuration("DOCRECON_STATUS_INTERVAL", c.Poll.StatusInterval)
	c.Poll.RosterInterval = getEnvAsDuration("DOCRECON_ROSTER_INTERVAL", c.Poll.RosterInterval)
	c.Ingest.Root = getEnv("DOCRECON_INBOX", c.Ingest.Root)
	c.Ingest.Debounce = getEnvAsDuration("DOCRECON_INBOX_DEBOUNCE", c.Ingest.Debounce)
	c.Export.OutputDir = getEnv("DOCRECON_EXPORT_DIR", c.Export.OutputDir)
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
	if c.Service.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "DOCRECON_SERVICE_URL is required", ErrInvalidInput)
	}
	if c.Poll.StatusInterval <= 0 || c.Poll.RosterInterval <= 0 {
		return NewAppError("CONFIG_ERROR", "poll intervals must be positive", ErrInvalidInput)
	}
	return nil
}
