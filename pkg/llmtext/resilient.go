package llmtext

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/pgx-risk-engine/internal/domain"
)

// ResilientGenerator adapts a Provider to the engine's TextGenerator port,
// adding a request rate limit, a per-call timeout, and a circuit breaker.
// Breaker-open and limiter errors surface as ordinary generation failures,
// which callers treat as the deterministic-fallback signal.
type ResilientGenerator struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   *logrus.Logger
}

// NewResilientGenerator wraps a provider. requestsPerSecond <= 0 disables
// rate limiting; timeout <= 0 disables the per-call deadline.
func NewResilientGenerator(provider Provider, requestsPerSecond int, timeout time.Duration, logger *logrus.Logger) *ResilientGenerator {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "text-generation",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state change")
		},
	})

	return &ResilientGenerator{
		provider: provider,
		breaker:  breaker,
		limiter:  rate.NewLimiter(limit, 1),
		timeout:  timeout,
		logger:   logger,
	}
}

// Generate implements domain.TextGenerator.
func (g *ResilientGenerator) Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llmtext: rate limiter: %w", err)
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.provider.Complete(callCtx, prompt, opts.MaxTokens, opts.Temperature)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return "", fmt.Errorf("llmtext: text-generation unavailable (circuit breaker open)")
		}
		return "", fmt.Errorf("llmtext: completion failed: %w", err)
	}
	return result.(string), nil
}
