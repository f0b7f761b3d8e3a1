// Package llmtext wraps external text-generation providers behind a single
// completion interface with client-side rate limiting and a circuit breaker.
package llmtext

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned by NewProvider when no credential is set.
var ErrNotConfigured = errors.New("llmtext: no text-generation credential configured")

// Provider is the raw text-completion capability: a prompt plus generation
// parameters in, generated text or an error out.
type Provider interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// Config selects and parameterizes a provider.
type Config struct {
	Provider string
	Model    string
	APIKey   string
}

// NewProvider dispatches to the named provider implementation.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	switch strings.ToLower(cfg.Provider) {
	case "anthropic", "":
		return newAnthropicProvider(cfg.Model, cfg.APIKey)
	default:
		return nil, fmt.Errorf("llmtext: unknown provider %q", cfg.Provider)
	}
}
