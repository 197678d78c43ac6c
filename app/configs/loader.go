package configs

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"PortfolioAI/app/chat"
	"PortfolioAI/app/clients"
	"PortfolioAI/app/gate"
	"PortfolioAI/app/models"
	"PortfolioAI/app/prompts"
	"PortfolioAI/app/rag"
)

type Config struct {
	Persona    prompts.Persona     `yaml:"persona"`
	LLM        models.LLMConfig    `yaml:"llm"`
	Qdrant     rag.QdrantConfig    `yaml:"qdrant"`
	Embedder   rag.EmbedderConfig  `yaml:"embedder"`
	Retrieval  rag.RetrieverConfig `yaml:"retrieval"`
	Generation models.RetryConfig  `yaml:"generation"`
	Chat       chat.Config         `yaml:"chat"`
	Gate       gate.Limits         `yaml:"gate"`
	Storage    StorageConfig       `yaml:"storage"`
	Seed       rag.SeedConfig      `yaml:"seed"`
	Clients    []clients.Config    `yaml:"clients,omitempty" validate:"dive"`
}

type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// Default returns a configuration that works against a local LM Studio and
// Qdrant with no file at all.
func Default() *Config {
	return &Config{
		Persona:    prompts.DefaultPersona(),
		LLM:        models.DefaultLLMConfig(),
		Qdrant:     rag.DefaultQdrantConfig(),
		Embedder:   rag.DefaultEmbedderConfig(),
		Retrieval:  rag.DefaultRetrieverConfig(),
		Generation: models.DefaultRetryConfig(),
		Chat:       chat.DefaultConfig(),
		Gate:       gate.DefaultLimits(),
		Storage:    StorageConfig{Enabled: true, DBPath: os.Getenv("DB_PATH")},
		Seed:       rag.DefaultSeedConfig(),
	}
}

// LoadConfig reads the YAML file at path on top of Default. ${VAR} references
// are expanded from the environment before parsing. An empty path returns the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configs file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configs: %w", err)
	}
	if c.Retrieval.TopK*c.Retrieval.OverfetchFactor > 100 {
		return fmt.Errorf("retrieval: top_k * overfetch_factor must not exceed 100")
	}
	if c.Gate.MinLength < 1 {
		return fmt.Errorf("gate: min_length must be at least 1")
	}
	for i, cc := range c.Clients {
		if cc.Enabled && cc.Type == "discord" && cc.Config["token"] == "" && os.Getenv("DISCORD_TOKEN") == "" {
			return fmt.Errorf("client %d: discord client needs a token", i)
		}
	}
	return nil
}

// Settings is the orchestrator's view of the configuration.
func (c *Config) Settings() chat.Settings {
	return chat.Settings{
		Chat:      c.Chat,
		Limits:    c.Gate,
		Retrieval: c.Retrieval,
		Retry:     c.Generation,
		Persona:   c.Persona,
	}
}
