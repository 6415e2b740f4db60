package parser

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"filingpipe/pkg/core/filing"
	"filingpipe/pkg/core/recovery"
)

// ParserTypeStreaming tags streaming-parser operations in monitor records.
const ParserTypeStreaming = "streaming"

// streamState is the explicit state-machine value for incremental JSON
// detection: the accumulation buffer, whether the opening brace has been
// seen, current brace depth and in-string/escape flags. It is advanced one
// byte at a time by step, which keeps the transition logic pure and directly
// testable.
type streamState struct {
	buf      []byte
	started  bool
	depth    int
	inString bool
	escaped  bool
}

// step advances the state by one input byte. Braces inside string literals
// never affect depth.
func step(s streamState, c byte) streamState {
	if !s.started {
		if c == '{' {
			s.started = true
			s.buf = append(s.buf, c)
			s.depth = 1
		}
		return s
	}

	s.buf = append(s.buf, c)

	if s.inString {
		switch {
		case s.escaped:
			s.escaped = false
		case c == '\\':
			s.escaped = true
		case c == '"':
			s.inString = false
		}
		return s
	}

	switch c {
	case '"':
		s.inString = true
	case '{':
		s.depth++
	case '}':
		s.depth--
	}
	return s
}

// complete reports whether a full top-level object has been buffered.
func (s streamState) complete() bool {
	return s.started && s.depth == 0
}

// StreamHandlers are the event callbacks for a streaming session. Any handler
// may be nil.
type StreamHandlers struct {
	// OnPartial fires when the best-effort key-value map changes.
	OnPartial func(map[string]any)
	// OnComplete fires once with the final extraction result.
	OnComplete func(ExtractedJSON)
	// OnError fires when neither direct parse nor repair yields a result.
	OnError func(error)
}

// StreamingParser consumes model output incrementally, detecting a complete
// JSON object mid-stream. One instance serves exactly one in-flight document;
// it owns its buffer and state exclusively and must not be shared across
// concurrent documents.
type StreamingParser struct {
	state        streamState
	handlers     StreamHandlers
	filingType   filing.Type
	allowPartial bool

	partial        map[string]any
	lastPartialSig string
	started        time.Time
	done           bool

	logger   *zap.Logger
	recorder OperationRecorder
}

// NewStreamingParser creates a session for one document.
func NewStreamingParser(t filing.Type, allowPartial bool, handlers StreamHandlers, logger *zap.Logger, recorder OperationRecorder) *StreamingParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamingParser{
		handlers:     handlers,
		filingType:   t,
		allowPartial: allowPartial,
		started:      time.Now(),
		logger:       logger,
		recorder:     recorder,
	}
}

// ProcessChunk feeds the next text increment. When brace depth returns to
// zero the buffered span is parsed (repairing on failure) and a complete or
// error event fires. Independently, partial extraction re-runs over the
// buffer and fires only when the extracted map changed.
func (p *StreamingParser) ProcessChunk(chunk string) {
	if p.done {
		return
	}

	for i := 0; i < len(chunk); i++ {
		p.state = step(p.state, chunk[i])
		if p.state.complete() {
			p.resolve(string(p.state.buf))
			return
		}
	}

	if p.allowPartial {
		p.emitPartial()
	}
}

// Finish forces resolution of whatever is buffered: repair-and-parse first,
// then the best partial map as a degraded complete, then an error.
func (p *StreamingParser) Finish() {
	if p.done {
		return
	}

	buffered := string(p.state.buf)
	if v, repaired, ok := parseRepaired(buffered); ok {
		p.completeWith(ExtractedJSON{Raw: repaired, Parsed: v, Method: MethodStreamingRepair, Success: true})
		return
	}

	if len(p.partial) > 0 {
		p.completeWith(ExtractedJSON{Raw: buffered, Parsed: p.partial, Method: MethodStreamingPartial, Success: true})
		return
	}

	p.fail(recovery.New(recovery.CategoryParsing, "stream ended without a parseable JSON object"))
}

// Progress estimates completion in [0, 1]. It blends an elapsed-time estimate
// with a key-count estimate (30/70 once a partial result exists) and caps at
// 95% until actually complete. UX signal only - never drives parsing logic.
func (p *StreamingParser) Progress() float64 {
	if p.done {
		return 1.0
	}

	const assumedDuration = 30 * time.Second
	timeEst := float64(time.Since(p.started)) / float64(assumedDuration)
	if timeEst > 1 {
		timeEst = 1
	}

	est := timeEst
	if len(p.partial) > 0 {
		expected := len(filing.SchemaFor(p.filingType).Fields)
		keyEst := float64(len(p.partial)) / float64(expected)
		if keyEst > 1 {
			keyEst = 1
		}
		est = 0.3*timeEst + 0.7*keyEst
	}

	if est > 0.95 {
		est = 0.95
	}
	return est
}

// resolve handles a complete buffered object: direct parse, then the repair
// cascade, then error.
func (p *StreamingParser) resolve(raw string) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		p.completeWith(ExtractedJSON{Raw: raw, Parsed: v, Method: MethodStreaming, Success: true})
		return
	}

	if v, repaired, ok := parseRepaired(raw); ok {
		p.completeWith(ExtractedJSON{Raw: repaired, Parsed: v, Method: MethodStreamingRepair, Success: true})
		return
	}

	p.fail(recovery.New(recovery.CategoryParsing, "buffered object failed to parse after repair"))
}

func (p *StreamingParser) emitPartial() {
	m := ExtractKeyValues(string(p.state.buf))
	if len(m) == 0 {
		return
	}

	sig, err := json.Marshal(m)
	if err != nil || string(sig) == p.lastPartialSig {
		return
	}
	p.lastPartialSig = string(sig)
	p.partial = m

	if p.handlers.OnPartial != nil {
		p.handlers.OnPartial(m)
	}
}

func (p *StreamingParser) completeWith(ext ExtractedJSON) {
	p.done = true
	if p.recorder != nil {
		if ext.Method == MethodStreamingRepair {
			p.recorder.RecordRetry(ParserTypeStreaming)
		}
		p.recorder.RecordOperation(ParserTypeStreaming, true, time.Since(p.started), "")
	}
	p.logger.Debug("stream complete", zap.String("method", ext.Method))
	if p.handlers.OnComplete != nil {
		p.handlers.OnComplete(ext)
	}
}

func (p *StreamingParser) fail(err error) {
	p.done = true
	if p.recorder != nil {
		p.recorder.RecordOperation(ParserTypeStreaming, false, time.Since(p.started), recovery.CategoryParsing)
	}
	p.logger.Debug("stream failed", zap.Error(err))
	if p.handlers.OnError != nil {
		p.handlers.OnError(err)
	}
}
