// Package recovery defines the error taxonomy and recovery utilities shared by
// every stage of the filing pipeline. Parser failures are represented as plain
// tagged values (ParserError) carrying a category, a severity and a recommended
// recovery strategy; control flow stays visible in function signatures instead
// of hiding in panic/recover.
package recovery

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Category classifies where in the pipeline an error originated.
type Category string

const (
	CategoryInvalidInput Category = "invalid_input"
	CategoryFileAccess   Category = "file_access"
	CategoryNetwork      Category = "network"
	CategoryParsing      Category = "parsing"
	CategoryExtraction   Category = "extraction"
	CategoryStructure    Category = "structure"
	CategoryHTML         Category = "html"
	CategoryPDF          Category = "pdf"
	CategoryXBRL         Category = "xbrl"
	CategoryResource     Category = "resource"
	CategoryInternal     Category = "internal"
	CategoryUnknown      Category = "unknown"
)

// Severity indicates how bad an error is. It is advisory and logging-oriented;
// callers must drive behavior off Recovery, never off Severity.
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Strategy is the recommended recovery action for an error.
type Strategy string

const (
	StrategyAbort      Strategy = "abort"
	StrategyRetry      Strategy = "retry"
	StrategyFallback   Strategy = "fallback"
	StrategyPartial    Strategy = "partial"
	StrategyContinue   Strategy = "continue"
	StrategySimplified Strategy = "simplified"
)

// ParserError is the structured error value used across the pipeline.
// Severity=fatal correlates with Recovery=abort by convention but is not
// structurally enforced - check Recovery, not Severity.
type ParserError struct {
	Category  Category       `json:"category"`
	Severity  Severity       `json:"severity"`
	Code      string         `json:"code"`
	Recovery  Strategy       `json:"recovery"`
	Message   string         `json:"message"`
	Original  error          `json:"-"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func (e *ParserError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("[%s/%s] %s: %v", e.Category, e.Severity, e.Message, e.Original)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Category, e.Severity, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (e *ParserError) Unwrap() error { return e.Original }

// WithContext attaches a key/value pair and returns the same error for chaining.
func (e *ParserError) WithContext(key string, value any) *ParserError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithSeverity overrides the severity and realigns the default recovery.
func (e *ParserError) WithSeverity(sev Severity) *ParserError {
	e.Severity = sev
	e.Recovery = defaultRecovery(sev)
	return e
}

// WithRecovery overrides the recommended recovery strategy.
func (e *ParserError) WithRecovery(s Strategy) *ParserError {
	e.Recovery = s
	return e
}

// New creates a ParserError with the default severity (error) and the
// corresponding default recovery (fallback). The code is auto-generated from
// the category prefix and a timestamp suffix.
func New(cat Category, message string) *ParserError {
	return &ParserError{
		Category:  cat,
		Severity:  SeverityError,
		Code:      generateCode(cat),
		Recovery:  defaultRecovery(SeverityError),
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap creates a ParserError around an existing cause. The cause is wrapped
// with eris so stack context survives the trip up the call chain.
func Wrap(cat Category, message string, cause error) *ParserError {
	e := New(cat, message)
	if cause != nil {
		e.Original = eris.Wrap(cause, message)
	}
	return e
}

// FromError normalizes an arbitrary error into a ParserError. ParserErrors
// pass through untouched; anything else gets its category inferred from the
// message text.
func FromError(err error) *ParserError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*ParserError); ok {
		return pe
	}
	cat := inferCategory(err.Error())
	e := New(cat, err.Error())
	e.Original = eris.Wrap(err, "normalized to parser error")
	return e
}

// inferCategory guesses a category from error message keywords.
func inferCategory(msg string) Category {
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, "network", "econnrefused", "econnreset", "dial tcp", "dns", "connection refused"):
		return CategoryNetwork
	case containsAny(lower, "permission denied", "access denied", "no such file", "file not found", "is a directory"):
		return CategoryFileAccess
	case containsAny(lower, "html", "goquery", "cheerio", "selector"):
		return CategoryHTML
	case containsAny(lower, "pdf"):
		return CategoryPDF
	case containsAny(lower, "xbrl", "xml"):
		return CategoryXBRL
	case containsAny(lower, "out of memory", "memory", "timeout", "timed out", "resource"):
		return CategoryResource
	default:
		return CategoryUnknown
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func defaultRecovery(sev Severity) Strategy {
	switch sev {
	case SeverityFatal:
		return StrategyAbort
	case SeverityWarning, SeverityInfo:
		return StrategyContinue
	default:
		return StrategyFallback
	}
}

// codePrefixes maps each category to a stable code prefix.
var codePrefixes = map[Category]string{
	CategoryInvalidInput: "INPUT",
	CategoryFileAccess:   "FILE",
	CategoryNetwork:      "NET",
	CategoryParsing:      "PARSE",
	CategoryExtraction:   "EXTRACT",
	CategoryStructure:    "STRUCT",
	CategoryHTML:         "HTML",
	CategoryPDF:          "PDF",
	CategoryXBRL:         "XBRL",
	CategoryResource:     "RES",
	CategoryInternal:     "INTERNAL",
	CategoryUnknown:      "UNKNOWN",
}

func generateCode(cat Category) string {
	prefix, ok := codePrefixes[cat]
	if !ok {
		prefix = "UNKNOWN"
	}
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixMilli())
}
