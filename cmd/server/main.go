package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-engine/internal/api"
	"github.com/pgx-risk-engine/internal/cache"
	"github.com/pgx-risk-engine/internal/config"
	"github.com/pgx-risk-engine/internal/domain"
	"github.com/pgx-risk-engine/internal/repository"
	"github.com/pgx-risk-engine/internal/service"
	"github.com/pgx-risk-engine/pkg/llmtext"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		logrus.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting pgx-risk-engine")

	generator := newGenerator(cfg, logger)
	explanationCache := newExplanationCache(cfg, logger)

	resolver := service.NewResolver(logger)
	classifier := service.NewClassifier(logger, resolver)
	explainer := service.NewExplainer(logger, generator, explanationCache, cfg.Explanation.MaxTokens, cfg.Explanation.Temperature)
	assembler := service.NewAssembler(logger)
	orchestrator := service.NewOrchestrator(logger, classifier, explainer, assembler)

	store, err := repository.NewSQLiteReportStore(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("Failed to open report store: %v", err)
	}
	defer store.Close()

	server := api.NewServer(cfg, logger, orchestrator, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}

// newLogger builds the process logger from configuration.
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(cfg.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// newGenerator builds the text-generation capability, or nil when no
// credential is configured; explanations then use deterministic templates.
func newGenerator(cfg *domain.Config, logger *logrus.Logger) domain.TextGenerator {
	provider, err := llmtext.NewProvider(llmtext.Config{
		Provider: cfg.Explanation.Provider,
		Model:    cfg.Explanation.Model,
		APIKey:   cfg.Explanation.APIKey,
	})
	if err != nil {
		if err == llmtext.ErrNotConfigured {
			logger.Info("Text-generation provider not configured; deterministic explanation templates will be used")
		} else {
			logger.WithError(err).Warn("Failed to create text-generation provider; deterministic explanation templates will be used")
		}
		return nil
	}
	return llmtext.NewResilientGenerator(provider, cfg.Explanation.RateLimit, cfg.Explanation.Timeout, logger)
}

// newExplanationCache selects the configured cache backend, preferring a
// degraded (LRU) cache over a hard failure when Redis is unreachable.
func newExplanationCache(cfg *domain.Config, logger *logrus.Logger) domain.ExplanationCache {
	if strings.ToLower(cfg.Cache.Backend) == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.DefaultTTL)
		if err == nil {
			return redisCache
		}
		logger.WithError(err).Warn("Redis cache unavailable; falling back to in-process LRU cache")
	}

	lruCache, err := cache.NewLRUCache(cfg.Cache.Size)
	if err != nil {
		logger.WithError(err).Warn("Failed to create LRU cache; explanation caching disabled")
		return nil
	}
	return lruCache
}
