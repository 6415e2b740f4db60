package recovery

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func failing(msg string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return "", errors.New(msg) }
}

func succeeding(val string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return val, nil }
}

func TestWithFallbacks_FirstSuccessWins(t *testing.T) {
	got, err := WithFallbacks(context.Background(),
		failing("primary down"),
		[]func(context.Context) (string, error){
			failing("first fallback down"),
			succeeding("from second fallback"),
			succeeding("never reached"),
		},
		nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from second fallback" {
		t.Errorf("expected second fallback result, got %q", got)
	}
}

func TestWithFallbacks_PrimarySucceeds(t *testing.T) {
	called := false
	fb := func(context.Context) (string, error) {
		called = true
		return "fallback", nil
	}

	got, err := WithFallbacks(context.Background(), succeeding("primary"),
		[]func(context.Context) (string, error){fb}, nil)
	if err != nil || got != "primary" {
		t.Fatalf("expected primary result, got %q (%v)", got, err)
	}
	if called {
		t.Error("expected fallbacks to be skipped")
	}
}

func TestWithFallbacks_TotalFailure(t *testing.T) {
	_, err := WithFallbacks(context.Background(),
		failing("a"),
		[]func(context.Context) (string, error){failing("b"), failing("c")},
		nil)
	if err == nil {
		t.Fatal("expected an aggregate error")
	}

	var pe *ParserError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a ParserError, got %T", err)
	}
	if pe.Severity != SeverityFatal || pe.Recovery != StrategyAbort {
		t.Errorf("expected fatal/abort, got %s/%s", pe.Severity, pe.Recovery)
	}
	if !strings.Contains(pe.Message, "all 3 attempts failed") {
		t.Errorf("expected aggregate message, got %q", pe.Message)
	}
	for _, part := range []string{"attempt 1: a", "attempt 2: b", "attempt 3: c"} {
		if !strings.Contains(pe.Message, part) {
			t.Errorf("expected %q in aggregate message %q", part, pe.Message)
		}
	}
}

func TestCollectFallbacks(t *testing.T) {
	results, err := CollectFallbacks(context.Background(),
		succeeding("a"),
		[]func(context.Context) (string, error){failing("skip"), succeeding("b")},
		nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 || results[0] != "a" || results[1] != "b" {
		t.Errorf("expected [a b], got %v", results)
	}
}

func TestCollectFallbacks_TotalFailure(t *testing.T) {
	_, err := CollectFallbacks(context.Background(),
		failing("x"),
		[]func(context.Context) (string, error){failing("y")},
		nil)
	if err == nil {
		t.Fatal("expected an error when nothing succeeds")
	}
}

func TestWithErrorHandling_FallbackRuns(t *testing.T) {
	got, err := WithErrorHandling(context.Background(),
		failing("primary exploded"),
		succeeding("recovered"),
		nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "recovered" {
		t.Errorf("expected fallback value, got %q", got)
	}
}

func TestWithErrorHandling_RecoveryOverrideSkipsFallback(t *testing.T) {
	called := false
	fb := func(context.Context) (string, error) {
		called = true
		return "should not run", nil
	}

	_, err := WithErrorHandling(context.Background(),
		failing("primary exploded"),
		fb,
		&HandleOptions{Recovery: StrategyAbort})
	if err == nil {
		t.Fatal("expected the error to propagate")
	}
	if called {
		t.Error("expected the fallback to be skipped with abort recovery")
	}

	var pe *ParserError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a ParserError, got %T", err)
	}
	if pe.Recovery != StrategyAbort {
		t.Errorf("expected abort recovery, got %s", pe.Recovery)
	}
}

func TestWithErrorHandling_FailedFallbackIsFatal(t *testing.T) {
	_, err := WithErrorHandling(context.Background(),
		failing("primary exploded"),
		failing("fallback exploded too"),
		nil)
	if err == nil {
		t.Fatal("expected an error")
	}

	var pe *ParserError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a ParserError, got %T", err)
	}
	if pe.Severity != SeverityFatal {
		t.Errorf("expected fatal severity, got %s", pe.Severity)
	}
	if pe.Context["primary_error"] != "primary exploded" {
		t.Errorf("expected primary error in context, got %v", pe.Context)
	}
}

func TestWithErrorHandling_Success(t *testing.T) {
	got, err := WithErrorHandling(context.Background(), succeeding("fine"), nil, nil)
	if err != nil || got != "fine" {
		t.Errorf("expected clean success, got %q (%v)", got, err)
	}
}
