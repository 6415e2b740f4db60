package recovery

import (
	"context"

	"go.uber.org/zap"
)

// HandleOptions tunes WithErrorHandling behavior.
type HandleOptions struct {
	// Recovery, when non-empty, overrides the normalized error's strategy
	// before any fallback decision is made.
	Recovery Strategy
	// Context entries are attached to the normalized error.
	Context map[string]any
	// Logger receives a warning per recovered failure. Nil means silent.
	Logger *zap.Logger
}

// WithErrorHandling runs fn; on failure the error is normalized to a
// ParserError and, if a fallback is supplied and the error's recovery is
// fallback, the fallback runs instead. A fallback that itself fails is wrapped
// as a fatal/abort internal error. Any other failure is returned as the
// (possibly recovery-overridden) ParserError.
func WithErrorHandling[T any](ctx context.Context, fn func(context.Context) (T, error), fallback func(context.Context) (T, error), opts *HandleOptions) (T, error) {
	val, err := fn(ctx)
	if err == nil {
		return val, nil
	}

	pe := FromError(err)
	if opts != nil {
		if opts.Recovery != "" {
			pe = pe.WithRecovery(opts.Recovery)
		}
		for k, v := range opts.Context {
			pe = pe.WithContext(k, v)
		}
		if opts.Logger != nil {
			opts.Logger.Warn("operation failed",
				zap.String("category", string(pe.Category)),
				zap.String("recovery", string(pe.Recovery)),
				zap.Error(pe))
		}
	}

	if fallback != nil && pe.Recovery == StrategyFallback {
		fv, ferr := fallback(ctx)
		if ferr == nil {
			return fv, nil
		}
		var zero T
		fe := Wrap(CategoryInternal, "fallback failed after primary failure", ferr).
			WithSeverity(SeverityFatal).
			WithContext("primary_error", pe.Message)
		return zero, fe
	}

	var zero T
	return zero, pe
}
