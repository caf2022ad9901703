// Package config provides configuration management for the paper search service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Scoring strategy names accepted by search.scoring_strategy.
const (
	// StrategyWeightedLinear sums weighted ranking features.
	StrategyWeightedLinear = "weighted_linear"
	// StrategyRegression applies learned regression coefficients.
	StrategyRegression = "regression"
)

// Config holds all configuration for the paper search service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Search contains federated search pipeline settings.
	Search SearchConfig `mapstructure:"search"`
	// History contains Kafka search-history recorder settings.
	History HistoryConfig `mapstructure:"history"`
	// Sources contains paper source API configurations.
	Sources SourcesConfig `mapstructure:"sources"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr, file path).
	Output string `mapstructure:"output"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
}

// SearchConfig holds federated search pipeline settings.
type SearchConfig struct {
	// FanoutTimeout bounds the whole multi-source fan-out. Sources that
	// have not answered by then are dropped from the response.
	FanoutTimeout time.Duration `mapstructure:"fanout_timeout"`
	// PerSourceTarget is the baseline number of papers retained per
	// source before the global merge.
	PerSourceTarget int `mapstructure:"per_source_target"`
	// MaxPoolSize caps the merged candidate pool.
	MaxPoolSize int `mapstructure:"max_pool_size"`
	// AdvancedRanker enables the multi-feature ranking stage on top of
	// the two-stage relevance optimizer.
	AdvancedRanker bool `mapstructure:"advanced_ranker"`
	// ScoringStrategy selects the advanced ranker's scoring model
	// (weighted_linear, regression).
	ScoringStrategy string `mapstructure:"scoring_strategy"`
	// DiversityLambda is the MMR relevance/diversity trade-off (0.0-1.0;
	// 1.0 disables diversification).
	DiversityLambda float64 `mapstructure:"diversity_lambda"`

	// RegressionCoefficients and RegressionIntercept parameterize the
	// regression scoring strategy. Required when scoring_strategy is
	// regression; one coefficient per ranking feature.
	RegressionCoefficients []float64 `mapstructure:"regression_coefficients"`
	RegressionIntercept    float64   `mapstructure:"regression_intercept"`
	// MaxExplanations is the number of top results annotated with score
	// breakdowns in the ranking diagnostics.
	MaxExplanations int `mapstructure:"max_explanations"`
}

// HistoryConfig holds Kafka search-history recorder settings.
type HistoryConfig struct {
	// Enabled controls whether completed searches are recorded.
	Enabled bool `mapstructure:"enabled"`
	// Brokers is the list of Kafka broker addresses.
	Brokers []string `mapstructure:"brokers"`
	// Topic is the Kafka topic search records are published to.
	Topic string `mapstructure:"topic"`
	// BatchTimeout is the maximum time to wait for a batch to fill before sending.
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// SourcesConfig holds configuration for all paper source APIs.
type SourcesConfig struct {
	// SemanticScholar contains Semantic Scholar API settings.
	SemanticScholar SourceConfig `mapstructure:"semantic_scholar"`
	// OpenAlex contains OpenAlex API settings.
	OpenAlex SourceConfig `mapstructure:"openalex"`
}

// SourceConfig holds configuration for a single paper source API.
type SourceConfig struct {
	// Enabled controls whether this source is used.
	Enabled bool `mapstructure:"enabled"`
	// APIKey is the API key (loaded from environment variable, e.g. PAPERSEARCH_SOURCES_SEMANTIC_SCHOLAR_API_KEY).
	APIKey string `mapstructure:"-"`
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the timeout for API calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// RateBurst is the rate limiter burst size.
	RateBurst int `mapstructure:"rate_burst"`
	// MaxResults is the maximum results per query.
	MaxResults int `mapstructure:"max_results"`
	// MaxRetries is the maximum retry attempts for transient failures.
	MaxRetries int `mapstructure:"max_retries"`
	// RetryDelay is the base delay between retries.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// Weight is the source's reputation weight (0.0-1.0).
	Weight float64 `mapstructure:"weight"`
	// Specializations lists disciplines the source covers especially well.
	Specializations []string `mapstructure:"specializations"`
	// MinQuality is the per-source quality floor for retained papers.
	MinQuality float64 `mapstructure:"min_quality"`
	// ResultCap caps papers taken from this source before optimization.
	ResultCap int `mapstructure:"result_cap"`
	// AllowMissingAuthors exempts the source from the author requirement.
	AllowMissingAuthors bool `mapstructure:"allow_missing_authors"`
	// AllowUnknownYear exempts the source from the publication-year requirement.
	AllowUnknownYear bool `mapstructure:"allow_unknown_year"`
	// Mailto identifies the caller to sources with polite pools (OpenAlex).
	Mailto string `mapstructure:"mailto"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("PAPERSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/paper-search-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load secrets exclusively from environment variables.
	// These fields use mapstructure:"-" to prevent loading from config files.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets populates secret fields exclusively from environment variables.
// These fields are tagged with mapstructure:"-" to prevent loading from config files.
func loadSecrets(cfg *Config) {
	cfg.Sources.SemanticScholar.APIKey = os.Getenv("PAPERSEARCH_SOURCES_SEMANTIC_SCHOLAR_API_KEY")
	cfg.Sources.OpenAlex.APIKey = os.Getenv("PAPERSEARCH_SOURCES_OPENALEX_API_KEY")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Search pipeline defaults
	v.SetDefault("search.fanout_timeout", "60s")
	v.SetDefault("search.per_source_target", 50)
	v.SetDefault("search.max_pool_size", 1000)
	v.SetDefault("search.advanced_ranker", false)
	v.SetDefault("search.scoring_strategy", StrategyWeightedLinear)
	v.SetDefault("search.diversity_lambda", 1.0)
	v.SetDefault("search.max_explanations", 10)

	// History recorder defaults
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.brokers", []string{"localhost:9092"})
	v.SetDefault("history.topic", "events.search_history.paper_search_service")
	v.SetDefault("history.batch_timeout", "1s")

	// Source defaults - Semantic Scholar
	// API keys are loaded exclusively from environment variables (see loadSecrets).
	v.SetDefault("sources.semantic_scholar.enabled", true)
	v.SetDefault("sources.semantic_scholar.base_url", "https://api.semanticscholar.org/graph/v1")
	v.SetDefault("sources.semantic_scholar.timeout", "30s")
	v.SetDefault("sources.semantic_scholar.rate_limit", 10.0)
	v.SetDefault("sources.semantic_scholar.rate_burst", 10)
	v.SetDefault("sources.semantic_scholar.max_results", 100)
	v.SetDefault("sources.semantic_scholar.max_retries", 3)
	v.SetDefault("sources.semantic_scholar.retry_delay", "1s")
	v.SetDefault("sources.semantic_scholar.weight", 0.85)
	v.SetDefault("sources.semantic_scholar.specializations", []string{"computer_science", "medicine", "biology"})
	v.SetDefault("sources.semantic_scholar.min_quality", 0.5)
	v.SetDefault("sources.semantic_scholar.result_cap", 100)
	v.SetDefault("sources.semantic_scholar.allow_missing_authors", false)
	v.SetDefault("sources.semantic_scholar.allow_unknown_year", false)

	// Source defaults - OpenAlex
	v.SetDefault("sources.openalex.enabled", true)
	v.SetDefault("sources.openalex.base_url", "https://api.openalex.org")
	v.SetDefault("sources.openalex.timeout", "30s")
	v.SetDefault("sources.openalex.rate_limit", 10.0)
	v.SetDefault("sources.openalex.rate_burst", 10)
	v.SetDefault("sources.openalex.max_results", 200)
	v.SetDefault("sources.openalex.max_retries", 3)
	v.SetDefault("sources.openalex.retry_delay", "1s")
	v.SetDefault("sources.openalex.weight", 0.8)
	v.SetDefault("sources.openalex.specializations", []string{})
	v.SetDefault("sources.openalex.min_quality", 0.5)
	v.SetDefault("sources.openalex.result_cap", 200)
	v.SetDefault("sources.openalex.allow_missing_authors", false)
	v.SetDefault("sources.openalex.allow_unknown_year", true)
	v.SetDefault("sources.openalex.mailto", "")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	// Validate search pipeline config
	if c.Search.FanoutTimeout <= 0 {
		return fmt.Errorf("search fanout_timeout must be positive")
	}
	if c.Search.PerSourceTarget <= 0 {
		return fmt.Errorf("search per_source_target must be positive")
	}
	if c.Search.MaxPoolSize <= 0 {
		return fmt.Errorf("search max_pool_size must be positive")
	}
	if c.Search.DiversityLambda < 0 || c.Search.DiversityLambda > 1 {
		return fmt.Errorf("search diversity_lambda must be between 0 and 1")
	}
	switch strings.ToLower(c.Search.ScoringStrategy) {
	case StrategyWeightedLinear:
	case StrategyRegression:
		if len(c.Search.RegressionCoefficients) == 0 {
			return fmt.Errorf("scoring strategy %s requires regression_coefficients", StrategyRegression)
		}
	default:
		return fmt.Errorf("invalid scoring strategy: %s", c.Search.ScoringStrategy)
	}

	// Validate history config
	if c.History.Enabled {
		if len(c.History.Brokers) == 0 {
			return fmt.Errorf("history brokers are required when history is enabled")
		}
		if c.History.Topic == "" {
			return fmt.Errorf("history topic is required when history is enabled")
		}
	}

	// Validate source config
	for name, src := range map[string]SourceConfig{
		"semantic_scholar": c.Sources.SemanticScholar,
		"openalex":         c.Sources.OpenAlex,
	} {
		if !src.Enabled {
			continue
		}
		if src.BaseURL == "" {
			return fmt.Errorf("source %s: base_url is required", name)
		}
		if src.Weight < 0 || src.Weight > 1 {
			return fmt.Errorf("source %s: weight must be between 0 and 1", name)
		}
		if src.RateLimit <= 0 {
			return fmt.Errorf("source %s: rate_limit must be positive", name)
		}
		if src.MaxResults <= 0 {
			return fmt.Errorf("source %s: max_results must be positive", name)
		}
	}

	return nil
}
