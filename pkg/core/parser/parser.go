package parser

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"filingpipe/pkg/core/filing"
	"filingpipe/pkg/core/recovery"
)

// OperationRecorder receives per-call outcomes. The parser monitor satisfies
// this; a nil recorder disables instrumentation without affecting parsing.
type OperationRecorder interface {
	RecordOperation(parserType string, success bool, d time.Duration, cat recovery.Category)
	RecordRetry(parserType string)
}

// ParserTypeResponse tags response-parser operations in monitor records.
const ParserTypeResponse = "response"

// Parser converts LLM response text into validated filing data.
type Parser struct {
	logger   *zap.Logger
	recorder OperationRecorder
}

// New creates a Parser. Logger may be nil (nop); recorder may be nil (no
// instrumentation).
func New(logger *zap.Logger, recorder OperationRecorder) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger, recorder: recorder}
}

// ParseResponse runs the full pipeline on a raw model reply: extraction,
// repair-and-retry, schema validation, partial-field fallback and optional
// normalization. Failures come back as a structured result, never as an
// error, so one bad filing cannot abort a batch.
func (p *Parser) ParseResponse(text string, t filing.Type, opts ParseOptions) ParseResult {
	started := time.Now()
	metrics := &ParseMetrics{Method: MethodNone}

	finish := func(res ParseResult, cat recovery.Category) ParseResult {
		metrics.Total = time.Since(started)
		metrics.Category = cat
		if opts.CollectMetrics {
			res.Metrics = metrics
		}
		if p.recorder != nil {
			p.recorder.RecordOperation(ParserTypeResponse, res.Success, metrics.Total, cat)
		}
		return res
	}

	extractStart := time.Now()
	ext := extractJSON(text, opts.AllowPartial, opts.MaxRepairAttempts)
	metrics.Extraction = time.Since(extractStart)
	metrics.Method = ext.Method

	// An extraction that only succeeded via the repair pass counts as a
	// retried operation in the monitor aggregates.
	if p.recorder != nil && strings.HasSuffix(ext.Method, repairedSuffix) {
		p.recorder.RecordRetry(ParserTypeResponse)
	}

	if !ext.Success {
		p.logger.Debug("extraction failed",
			zap.String("filing_type", t.String()),
			zap.String("error", ext.Err))
		return finish(ParseResult{
			Success: false,
			Raw:     text,
			Errors:  []string{ext.Err},
		}, recovery.CategoryExtraction)
	}

	obj, isObject := ext.Parsed.(map[string]any)
	if !isObject {
		return finish(ParseResult{
			Success: false,
			Raw:     ext.Raw,
			Errors:  []string{"extracted payload is not a JSON object"},
		}, recovery.CategoryParsing)
	}

	validateStart := time.Now()
	vr := Validate(obj, t, opts.Strict)
	metrics.Validation = time.Since(validateStart)

	data := obj
	if !vr.Valid {
		if !opts.AllowPartial {
			return finish(ParseResult{
				Success: false,
				Raw:     ext.Raw,
				Errors:  vr.Errors,
			}, recovery.CategoryStructure)
		}
		// Only fields that satisfy the per-field type survive. A nil partial
		// means nothing was salvageable and the empty-data branch fails the
		// call; the invalid object must never leak through as data.
		partial := ExtractPartialFields(obj, t)
		vr.PartialData = partial
		data = partial
	}

	result := ParseResult{
		Raw:    ext.Raw,
		Errors: vr.Errors,
	}

	if len(data) == 0 {
		result.Success = false
		return finish(result, recovery.CategoryParsing)
	}

	// Usable data exists: success even when validation was not fully
	// satisfied, with the partial flag gating downstream labeling.
	result.Success = true
	result.Partial = !vr.Valid
	result.Data = data

	if opts.Normalize {
		normalizeStart := time.Now()
		normalizeForType(result.Data, t)
		metrics.Normalization = time.Since(normalizeStart)
	}

	p.logger.Debug("response parsed",
		zap.String("filing_type", t.String()),
		zap.String("method", ext.Method),
		zap.Bool("partial", result.Partial))
	return finish(result, "")
}

// ParseResponse is the package-level convenience wrapper with no logger and
// no instrumentation.
func ParseResponse(text string, t filing.Type, opts ParseOptions) ParseResult {
	return New(nil, nil).ParseResponse(text, t, opts)
}
