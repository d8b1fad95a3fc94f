// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.supportkb/config.yaml)
//  3. Default values
//
// The Config struct is constructed once at process start by Load() and passed
// by reference into each component's constructor. Components never re-read
// environment state after startup.
//
// Error Handling:
//   - Sentinel errors for Go-idiomatic checking with errors.Is()
//   - Wrapped with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidMetric indicates the distance metric is not supported.
	ErrInvalidMetric = errors.New("invalid distance metric")

	// ErrInvalidTopK indicates the default top-k is out of range.
	ErrInvalidTopK = errors.New("invalid top-k")

	// ErrInvalidWeight indicates a scoring weight is negative.
	ErrInvalidWeight = errors.New("invalid scoring weight")

	// ErrInvalidEmbeddingDim indicates the embedding dimension is out of range.
	ErrInvalidEmbeddingDim = errors.New("invalid embedding dimension")

	// ErrInvalidBatchSize indicates the embedding batch size is out of range.
	ErrInvalidBatchSize = errors.New("invalid embedding batch size")
)

// Distance metric identifiers used in Config.DefaultMetric.
const (
	MetricCosine    = "cosine"
	MetricEuclidean = "euclidean"
	MetricIP        = "ip"
)

// Config stores application configuration.
// SENSITIVE fields (passwords, API keys) must never be logged verbatim.
type Config struct {
	// PostgreSQL connection (see storage.go for DSN builders)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Embedding provider (OpenAI-compatible /embeddings endpoint)
	EmbeddingBaseURL string `mapstructure:"embedding_base_url"`
	EmbeddingAPIKey  string `mapstructure:"embedding_api_key"` // SENSITIVE
	EmbeddingModel   string `mapstructure:"embedding_model"`
	EmbeddingDim     int    `mapstructure:"embedding_dim"`
	EmbedBatchSize   int    `mapstructure:"embed_batch_size"`

	// Retrieval defaults
	DefaultMetric  string  `mapstructure:"default_distance_metric"`
	DefaultTopK    int     `mapstructure:"default_top_k"`
	SemanticWeight float64 `mapstructure:"semantic_weight"`
	LexicalWeight  float64 `mapstructure:"lexical_weight"`

	// Answer generation (external collaborator, optional)
	GroqAPIKey string `mapstructure:"groq_api_key"` // SENSITIVE
	GroqModel  string `mapstructure:"groq_model"`

	// Feedback log location
	FeedbackLog string `mapstructure:"feedback_log"`

	// HTTP server address for serve mode
	HTTPAddr string `mapstructure:"http_addr"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".supportkb")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use defaults.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL has highest priority for PostgreSQL settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// PostgreSQL defaults (matching docker-compose.yml)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5430)
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_db_name", "customer_kb")
	v.SetDefault("postgres_ssl_mode", "disable")

	// Embedding defaults
	v.SetDefault("embedding_base_url", "http://localhost:11434/v1")
	v.SetDefault("embedding_model", "all-minilm")
	v.SetDefault("embedding_dim", 384)
	v.SetDefault("embed_batch_size", 64)

	// Retrieval defaults
	v.SetDefault("default_distance_metric", MetricCosine)
	v.SetDefault("default_top_k", 5)
	v.SetDefault("semantic_weight", 0.7)
	v.SetDefault("lexical_weight", 0.3)

	// Answer generation defaults
	v.SetDefault("groq_model", "llama-3.1-8b-instant")

	// Feedback log defaults
	v.SetDefault("feedback_log", filepath.Join("logs", "feedback.csv"))

	// HTTP server defaults
	v.SetDefault("http_addr", "127.0.0.1:8080")
}

// bindEnvVariables binds environment variables explicitly.
// Names match the original deployment's .env conventions.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("postgres_host", "PG_HOST")
	mustBind("postgres_port", "PG_PORT")
	mustBind("postgres_user", "PG_USER")
	mustBind("postgres_password", "DB_PASSWORD")
	mustBind("postgres_db_name", "PG_DB")
	mustBind("postgres_ssl_mode", "PG_SSLMODE")

	mustBind("embedding_base_url", "EMBEDDING_BASE_URL")
	mustBind("embedding_api_key", "EMBEDDING_API_KEY")
	mustBind("embedding_model", "EMBEDDING_MODEL_NAME")
	mustBind("embedding_dim", "EMBEDDING_DIM")
	mustBind("embed_batch_size", "EMBED_BATCH_SIZE")

	mustBind("default_distance_metric", "DEFAULT_DISTANCE_METRIC")
	mustBind("default_top_k", "DEFAULT_TOP_K")
	mustBind("semantic_weight", "SEMANTIC_WEIGHT")
	mustBind("lexical_weight", "LEXICAL_WEIGHT")

	mustBind("groq_api_key", "GROQ_API_KEY")
	mustBind("groq_model", "GROQ_MODEL")

	mustBind("feedback_log", "FEEDBACK_LOG")
	mustBind("http_addr", "HTTP_ADDR")
}
