package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for quipu-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values. Secrets (passwords, API
// keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL, read-only access expected)
	Database DatabaseConfig `yaml:"database"`

	// Language model configuration
	AI AIConfig `yaml:"ai"`

	// Query pipeline tuning
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Retrieval-augmented generation settings
	RAG RAGConfig `yaml:"rag"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User     string `yaml:"user" env:"PGUSER" env-default:"quipu"`
	Password string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"PGDATABASE" env-default:"quipu"`
	SSLMode  string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// AIConfig holds language-model provider settings.
type AIConfig struct {
	// Provider selects the completion backend: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`

	// Endpoint is the base URL for OpenAI-compatible providers.
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`

	// Model is the completion model name.
	Model string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o"`

	// APIKey is required by hosted providers. Secret - env only.
	APIKey string `yaml:"-" env:"AI_API_KEY"`

	// EmbeddingModel powers the document retriever. Only OpenAI-compatible
	// endpoints serve embeddings; when the provider is anthropic the
	// retriever is disabled.
	EmbeddingModel string `yaml:"embedding_model" env:"AI_EMBEDDING_MODEL" env-default:"text-embedding-3-small"`

	// Temperature for completion calls.
	Temperature float64 `yaml:"temperature" env:"AI_TEMPERATURE" env-default:"0.7"`
}

// PipelineConfig holds query-generation tuning knobs.
type PipelineConfig struct {
	// IgnoredTablesStr is a comma-separated list of table names that must
	// never appear in schema snapshots or generated queries.
	IgnoredTablesStr string `yaml:"ignored_tables" env:"IGNORED_TABLES" env-default:""`

	// IgnoredTables is the parsed form of IgnoredTablesStr (not from config file).
	IgnoredTables []string `yaml:"-"`

	// TokenCeiling is the approximate prompt budget for schema text.
	// Schemas estimated above it are chunked.
	TokenCeiling int `yaml:"token_ceiling" env:"TOKEN_CEILING" env-default:"4000"`

	// MaxSchemaChunks bounds how many chunks an oversized schema is split into.
	MaxSchemaChunks int `yaml:"max_schema_chunks" env:"MAX_SCHEMA_CHUNKS" env-default:"3"`

	// QueryRowLimit caps rows returned by generated queries.
	QueryRowLimit int `yaml:"query_row_limit" env:"QUERY_ROW_LIMIT" env-default:"1000"`
}

// RAGConfig holds document-retrieval settings.
type RAGConfig struct {
	// Enabled turns the retrieval path on. Even when enabled the retriever
	// degrades to a no-op if no documents or embeddings are available.
	Enabled bool `yaml:"enabled" env:"RAG_ENABLED" env-default:"true"`

	// DocsDir is the directory scanned for .txt and .md documents.
	DocsDir string `yaml:"docs_dir" env:"RAG_DOCS_DIR" env-default:"docs"`

	// TopK is how many passages are retrieved per question.
	TopK int `yaml:"top_k" env:"RAG_TOP_K" env-default:"3"`

	// PreviewLength truncates each retrieved passage before it reaches the
	// prompt, bounding prompt size.
	PreviewLength int `yaml:"preview_length" env:"RAG_PREVIEW_LENGTH" env-default:"500"`

	// ChunkSize and ChunkOverlap control document splitting at index time.
	ChunkSize    int `yaml:"chunk_size" env:"RAG_CHUNK_SIZE" env-default:"1000"`
	ChunkOverlap int `yaml:"chunk_overlap" env:"RAG_CHUNK_OVERLAP" env-default:"200"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. If config.yaml does not exist, environment variables alone are
// used. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.Pipeline.IgnoredTables = parseTableList(cfg.Pipeline.IgnoredTablesStr)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate rejects settings the pipeline cannot run with.
func (c *Config) validate() error {
	if c.Pipeline.MaxSchemaChunks < 1 {
		return fmt.Errorf("max_schema_chunks must be at least 1, got %d", c.Pipeline.MaxSchemaChunks)
	}
	if c.Pipeline.TokenCeiling < 1 {
		return fmt.Errorf("token_ceiling must be positive, got %d", c.Pipeline.TokenCeiling)
	}
	if c.RAG.TopK < 1 {
		return fmt.Errorf("rag top_k must be at least 1, got %d", c.RAG.TopK)
	}
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("rag chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.RAG.ChunkOverlap, c.RAG.ChunkSize)
	}
	switch c.AI.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported ai provider %q", c.AI.Provider)
	}
	return nil
}

// parseTableList splits a comma-separated table list, dropping empties.
func parseTableList(value string) []string {
	if value == "" {
		return nil
	}

	var tables []string
	for _, name := range strings.Split(value, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			tables = append(tables, name)
		}
	}
	return tables
}
