// Package parser converts raw LLM response text into validated, filing-type
// specific structured data. Extraction runs a cascade of strategies, repairs
// common syntax defects, validates against the filing schema and falls back
// to partial field extraction - a single messy response is represented as a
// result value, never as a batch-aborting failure.
package parser

import (
	"time"

	"filingpipe/pkg/core/recovery"
)

// Extraction method tags. A "-repaired" suffix marks a method that only
// succeeded after the textual repair cascade.
const (
	MethodCodeBlock        = "codeBlock"
	MethodBracketMatching  = "bracketMatching"
	MethodLargestStructure = "largestStructure"
	MethodPartial          = "partialExtraction"
	MethodStreaming        = "streaming"
	MethodStreamingRepair  = "streaming-repaired"
	MethodStreamingPartial = "streaming-partial"
	MethodNone             = "none"

	repairedSuffix = "-repaired"
)

// ExtractedJSON is the result of one extraction attempt from model text.
// Success implies Parsed is set and Err is empty.
type ExtractedJSON struct {
	Raw     string `json:"raw,omitempty"`
	Parsed  any    `json:"parsed,omitempty"`
	Err     string `json:"error,omitempty"`
	Method  string `json:"extraction_method"`
	Success bool   `json:"success"`
}

// ValidationResult is the outcome of schema validation. Exactly one of
// ValidatedData/PartialData carries usable data per call.
type ValidationResult struct {
	Valid         bool           `json:"valid"`
	Errors        []string       `json:"errors,omitempty"`
	ValidatedData map[string]any `json:"validated_data,omitempty"`
	PartialData   map[string]any `json:"partial_data,omitempty"`
}

// ParseMetrics records stage timings and the final extraction outcome, even
// on total failure.
type ParseMetrics struct {
	Extraction    time.Duration     `json:"extraction"`
	Validation    time.Duration     `json:"validation"`
	Normalization time.Duration     `json:"normalization"`
	Total         time.Duration     `json:"total"`
	Method        string            `json:"method"`
	Category      recovery.Category `json:"category,omitempty"`
}

// ParseResult is the top-level outcome handed to the summarization caller.
// Success=false implies Data is nil. Partial=true means data is present but
// validation was not fully satisfied - downstream consumers must treat it as
// usable-but-flagged, not as an error.
type ParseResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Raw     string         `json:"raw,omitempty"`
	Errors  []string       `json:"errors,omitempty"`
	Partial bool           `json:"partial,omitempty"`
	Metrics *ParseMetrics  `json:"metrics,omitempty"`
}

// ParseOptions tunes one ParseResponse call.
type ParseOptions struct {
	// Strict switches validation to full-schema mode: either the data
	// satisfies the whole schema or every violation is reported.
	Strict bool
	// AllowPartial enables the partial extraction strategies: the key-value
	// regex scan during extraction and the per-field salvage after a failed
	// validation.
	AllowPartial bool
	// Normalize enables filing-type specific date/currency/percentage
	// post-processing.
	Normalize bool
	// MaxRepairAttempts bounds the repair-and-retry step. Zero disables
	// repair entirely.
	MaxRepairAttempts int
	// CollectMetrics attaches stage timings to the result.
	CollectMetrics bool
}

// DefaultParseOptions is the standard profile for batch summarization runs.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		AllowPartial:      true,
		MaxRepairAttempts: 1,
	}
}
