package recovery

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// WithFallbacks runs the primary function and, on failure, each fallback in
// order, returning the first success. If everything fails the result is a
// fatal/abort ParserError aggregating every failure message.
func WithFallbacks[T any](ctx context.Context, primary func(context.Context) (T, error), fallbacks []func(context.Context) (T, error), logger *zap.Logger) (T, error) {
	attempts := append([]func(context.Context) (T, error){primary}, fallbacks...)

	var failures []string
	for i, attempt := range attempts {
		val, err := attempt(ctx)
		if err == nil {
			return val, nil
		}
		failures = append(failures, fmt.Sprintf("attempt %d: %v", i+1, err))
		if logger != nil {
			logger.Debug("fallback attempt failed", zap.Int("attempt", i+1), zap.Error(err))
		}
	}

	var zero T
	pe := New(CategoryInternal, fmt.Sprintf("all %d attempts failed: %s", len(attempts), strings.Join(failures, "; "))).
		WithSeverity(SeverityFatal)
	return zero, pe
}

// CollectFallbacks runs the primary and every fallback regardless of earlier
// successes, returning the full collection of successful results. An empty
// collection means total failure and yields the same aggregate fatal error as
// WithFallbacks.
func CollectFallbacks[T any](ctx context.Context, primary func(context.Context) (T, error), fallbacks []func(context.Context) (T, error), logger *zap.Logger) ([]T, error) {
	attempts := append([]func(context.Context) (T, error){primary}, fallbacks...)

	var results []T
	var failures []string
	for i, attempt := range attempts {
		val, err := attempt(ctx)
		if err != nil {
			failures = append(failures, fmt.Sprintf("attempt %d: %v", i+1, err))
			if logger != nil {
				logger.Debug("fallback attempt failed", zap.Int("attempt", i+1), zap.Error(err))
			}
			continue
		}
		results = append(results, val)
	}

	if len(results) == 0 {
		pe := New(CategoryInternal, fmt.Sprintf("all %d attempts failed: %s", len(attempts), strings.Join(failures, "; "))).
			WithSeverity(SeverityFatal)
		return nil, pe
	}
	return results, nil
}
