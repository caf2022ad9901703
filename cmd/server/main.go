// Package main provides the entry point for the paper search service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helixir/paper-search-service/internal/config"
	"github.com/helixir/paper-search-service/internal/history"
	"github.com/helixir/paper-search-service/internal/observability"
	"github.com/helixir/paper-search-service/internal/rank"
	"github.com/helixir/paper-search-service/internal/search"
	httpserver "github.com/helixir/paper-search-service/internal/server/http"
	"github.com/helixir/paper-search-service/internal/sources"
	"github.com/helixir/paper-search-service/internal/sources/openalex"
	"github.com/helixir/paper-search-service/internal/sources/semanticscholar"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("paper-search-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics("papersearch", prometheus.DefaultRegisterer)

	// Build the source registry from configuration.
	registry := sources.NewRegistry(sources.NewProfiles([]sources.Profile{
		profileFromConfig("semantic_scholar", cfg.Sources.SemanticScholar),
		profileFromConfig("openalex", cfg.Sources.OpenAlex),
	}))

	registry.Register(semanticscholar.NewClient(semanticscholar.Config{
		BaseURL:    cfg.Sources.SemanticScholar.BaseURL,
		APIKey:     cfg.Sources.SemanticScholar.APIKey,
		Timeout:    cfg.Sources.SemanticScholar.Timeout,
		RateLimit:  cfg.Sources.SemanticScholar.RateLimit,
		BurstSize:  cfg.Sources.SemanticScholar.RateBurst,
		MaxResults: cfg.Sources.SemanticScholar.MaxResults,
		Enabled:    cfg.Sources.SemanticScholar.Enabled,
	}, nil))

	registry.Register(openalex.New(openalex.Config{
		BaseURL:    cfg.Sources.OpenAlex.BaseURL,
		Email:      cfg.Sources.OpenAlex.Mailto,
		APIKey:     cfg.Sources.OpenAlex.APIKey,
		Timeout:    cfg.Sources.OpenAlex.Timeout,
		RateLimit:  cfg.Sources.OpenAlex.RateLimit,
		BurstSize:  cfg.Sources.OpenAlex.RateBurst,
		MaxResults: cfg.Sources.OpenAlex.MaxResults,
		Enabled:    cfg.Sources.OpenAlex.Enabled,
	}))

	logger.Info().Strs("sources", registry.Names()).Msg("source registry initialized")

	// Search history recorder.
	var recorder history.Recorder = history.NopRecorder{}
	if cfg.History.Enabled {
		recorder = history.NewKafkaRecorder(history.KafkaConfig{
			Brokers:      cfg.History.Brokers,
			Topic:        cfg.History.Topic,
			BatchTimeout: cfg.History.BatchTimeout,
		}, logger)
		logger.Info().
			Strs("brokers", cfg.History.Brokers).
			Str("topic", cfg.History.Topic).
			Msg("search history recorder enabled")
	}
	defer func() {
		if closeErr := recorder.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close history recorder")
		}
	}()

	// Optional feature-based ranking stage.
	var ranker *rank.AdvancedRanker
	if cfg.Search.AdvancedRanker {
		strategy, err := scoringStrategy(cfg.Search)
		if err != nil {
			return fmt.Errorf("build scoring strategy: %w", err)
		}
		ranker = rank.NewAdvancedRanker(rank.AdvancedRankerConfig{
			DiversityLambda: cfg.Search.DiversityLambda,
			MaxExplanations: cfg.Search.MaxExplanations,
		}, strategy, nil)
		logger.Info().
			Str("strategy", strategy.Name()).
			Float64("diversity_lambda", cfg.Search.DiversityLambda).
			Msg("advanced ranker enabled")
	}

	svc := search.NewService(search.Config{
		FanoutTimeout: cfg.Search.FanoutTimeout,
		Optimizer: rank.OptimizerConfig{
			PerSourceTarget: cfg.Search.PerSourceTarget,
			MaxPoolSize:     cfg.Search.MaxPoolSize,
		},
	}, registry, ranker, recorder, metrics, logger)

	// HTTP server.
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = promhttp.Handler()
	}
	httpSrv := httpserver.NewServer(httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MetricsPath:     cfg.Metrics.Path,
	}, svc, metricsHandler, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	logger.Info().Msg("paper-search-service stopped")
	return nil
}

// profileFromConfig maps one source's config onto its registry profile.
func profileFromConfig(name string, src config.SourceConfig) sources.Profile {
	return sources.Profile{
		Name:                name,
		Weight:              src.Weight,
		Specializations:     src.Specializations,
		MinQuality:          src.MinQuality,
		ResultCap:           src.ResultCap,
		AllowMissingAuthors: src.AllowMissingAuthors,
		AllowUnknownYear:    src.AllowUnknownYear,
	}
}

// scoringStrategy resolves the configured advanced-ranker strategy.
func scoringStrategy(cfg config.SearchConfig) (rank.ScoringStrategy, error) {
	switch strings.ToLower(cfg.ScoringStrategy) {
	case config.StrategyRegression:
		return rank.NewRegression(cfg.RegressionCoefficients, cfg.RegressionIntercept)
	default:
		return rank.WeightedLinear{}, nil
	}
}
