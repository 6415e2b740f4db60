package recovery

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

// RetryConfig controls WithRetry. Zero values fall back to defaults.
type RetryConfig struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// InitialDelay is the backoff before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration
	// RetryFactor multiplies the delay each attempt.
	RetryFactor float64
	// RetryableCategories widens or narrows which ParserError categories are
	// retried. Nil means the default set (network, resource, parsing).
	RetryableCategories []Category
	Logger              *zap.Logger
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.RetryFactor <= 0 {
		c.RetryFactor = 2.0
	}
	if c.RetryableCategories == nil {
		c.RetryableCategories = []Category{CategoryNetwork, CategoryResource, CategoryParsing}
	}
	return c
}

// transientKeywords mark plain errors worth retrying.
var transientKeywords = []string{"timeout", "network", "connection", "econnrefused", "econnreset"}

// Retryable reports whether an error qualifies for another attempt: a declared
// retry recovery, a ParserError in the retryable category set, or a plain
// error whose message matches common transient-failure keywords.
func Retryable(err error, categories []Category) bool {
	var pe *ParserError
	if errors.As(err, &pe) {
		if pe.Recovery == StrategyRetry {
			return true
		}
		for _, c := range categories {
			if pe.Category == c {
				return true
			}
		}
		return false
	}
	lower := strings.ToLower(err.Error())
	for _, kw := range transientKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// WithRetry runs fn with exponential backoff, retrying only errors Retryable
// deems transient. The backoff delay is the single intentional suspension
// point in the pipeline and honors ctx cancellation.
func WithRetry[T any](ctx context.Context, fn func(context.Context) (T, error), cfg RetryConfig) (T, error) {
	cfg = cfg.withDefaults()

	return retry.DoWithData(
		func() (T, error) { return fn(ctx) },
		retry.Context(ctx),
		retry.Attempts(uint(cfg.MaxRetries)+1),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return Retryable(err, cfg.RetryableCategories) }),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			d := time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.RetryFactor, float64(n)))
			if d > cfg.MaxDelay {
				d = cfg.MaxDelay
			}
			return d
		}),
		retry.OnRetry(func(n uint, err error) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("retrying after failure",
					zap.Uint("attempt", n+1),
					zap.Int("max_retries", cfg.MaxRetries),
					zap.Error(err))
			}
		}),
	)
}
