// Package config holds the Sanjeevani application configuration.
// Configuration is loaded from a YAML file with environment variable
// overrides for secrets and deployment-specific values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Sanjeevani configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Completion provider
	LLM LLMConfig `yaml:"llm"`

	// Embedding engine
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Knowledge base
	Store StoreConfig `yaml:"store"`

	// Orchestrator tuning
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`

	// HTTP API
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the completion provider.
type LLMConfig struct {
	Provider   string `yaml:"provider"` // groq, openai-compatible
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	PlanModel  string `yaml:"plan_model"`  // larger model for decomposition
	RouteModel string `yaml:"route_model"` // small fast model for routing
	SynthModel string `yaml:"synth_model"` // model for final synthesis
	Timeout    string `yaml:"timeout"`
	MaxRetries int    `yaml:"max_retries"`
}

// EmbeddingConfig configures the embedding engine used for semantic search.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // genai, ollama, hash
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"` // ollama only
}

// StoreConfig configures the SQLite knowledge base.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`

	// Collection names, kept configurable so multiple datasets can
	// coexist in one database file.
	ResearchCollection     string `yaml:"research_collection"`
	ConservationCollection string `yaml:"conservation_collection"`
	LocationCollection     string `yaml:"location_collection"`
}

// OrchestratorConfig tunes the planning/routing state machine.
type OrchestratorConfig struct {
	MaxRetriesPerStep int    `yaml:"max_retries_per_step"` // bounded step retry budget (default 1)
	MaxContextChars   int    `yaml:"max_context_chars"`    // synthesis context budget (default 8000)
	HistoryLimit      int    `yaml:"history_limit"`        // messages kept per session
	AliasDictionary   string `yaml:"alias_dictionary"`     // optional YAML alias dictionary path
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	Debug      bool            `yaml:"debug"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "sanjeevani",
		Version: "1.0.0",

		LLM: LLMConfig{
			Provider:   "groq",
			BaseURL:    "https://api.groq.com/openai/v1",
			PlanModel:  "llama-3.3-70b-versatile",
			RouteModel: "llama-3.1-8b-instant",
			SynthModel: "llama-3.1-8b-instant",
			Timeout:    "60s",
			MaxRetries: 1,
		},

		Embedding: EmbeddingConfig{
			Provider: "hash",
			Model:    "gemini-embedding-001",
			BaseURL:  "http://localhost:11434",
		},

		Store: StoreConfig{
			DatabasePath:           "data/sanjeevani.db",
			ResearchCollection:     "research_plants",
			ConservationCollection: "conservation_plants",
			LocationCollection:     "geo_locations",
		},

		Orchestrator: OrchestratorConfig{
			MaxRetriesPerStep: 1,
			MaxContextChars:   8000,
			HistoryLimit:      40,
		},

		Server: ServerConfig{
			Addr:         ":8800",
			ReadTimeout:  "30s",
			WriteTimeout: "120s",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file is not an
// error: defaults plus environment overrides are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides lets environment variables take precedence over file
// values. Secrets should come in this way rather than from the YAML file.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		c.LLM.Provider = "groq"
		c.LLM.APIKey = key
	}
	if url := os.Getenv("SANJEEVANI_LLM_URL"); url != "" {
		c.LLM.BaseURL = url
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Embedding.Provider = "genai"
		c.Embedding.APIKey = key
	}
	if path := os.Getenv("SANJEEVANI_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if addr := os.Getenv("SANJEEVANI_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if os.Getenv("SANJEEVANI_DEBUG") == "1" {
		c.Logging.Debug = true
		c.Logging.Level = "debug"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Store.DatabasePath == "" {
		return fmt.Errorf("store.database_path is required")
	}
	if c.Orchestrator.MaxRetriesPerStep < 0 {
		return fmt.Errorf("orchestrator.max_retries_per_step must be >= 0")
	}
	if c.Orchestrator.MaxContextChars <= 0 {
		return fmt.Errorf("orchestrator.max_context_chars must be > 0")
	}
	if _, err := c.LLMTimeout(); err != nil {
		return fmt.Errorf("llm.timeout: %w", err)
	}
	return nil
}

// LLMTimeout parses the configured completion timeout.
func (c *Config) LLMTimeout() (time.Duration, error) {
	if c.LLM.Timeout == "" {
		return 60 * time.Second, nil
	}
	return time.ParseDuration(c.LLM.Timeout)
}
