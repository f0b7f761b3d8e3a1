package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pgx-risk-engine/internal/domain"
)

// Manager loads and validates application configuration using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment, and defaults
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/pgx-risk-engine/")

	viper.SetEnvPrefix("PGX_RISK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and environment variables suffice.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Explanation provider defaults; api_key empty means unconfigured
	viper.SetDefault("explanation.provider", "anthropic")
	viper.SetDefault("explanation.model", "")
	viper.SetDefault("explanation.api_key", "")
	viper.SetDefault("explanation.max_tokens", 600)
	viper.SetDefault("explanation.temperature", 0.2)
	viper.SetDefault("explanation.timeout", "30s")
	viper.SetDefault("explanation.rate_limit", 5)

	// Cache defaults
	viper.SetDefault("cache.backend", "lru")
	viper.SetDefault("cache.size", 256)
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.default_ttl", "24h")

	// Database defaults
	viper.SetDefault("database.path", "data/reports.db")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch strings.ToLower(config.Cache.Backend) {
	case "lru", "redis":
	default:
		return fmt.Errorf("invalid cache backend: %s", config.Cache.Backend)
	}
	if strings.ToLower(config.Cache.Backend) == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis cache backend requires cache.redis_url")
	}

	if config.Explanation.Temperature < 0 || config.Explanation.Temperature > 1 {
		return fmt.Errorf("invalid explanation temperature: %f", config.Explanation.Temperature)
	}
	if config.Explanation.MaxTokens <= 0 {
		return fmt.Errorf("invalid explanation max_tokens: %d", config.Explanation.MaxTokens)
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}
