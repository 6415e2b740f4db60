// Package chunk decides whether a filing document fits a model context window
// and splits oversized documents into overlapping chunks. Token counts are a
// cheap chars/4 estimate, not a real tokenizer - callers may depend only on
// the comparison outcome, never on exact counts.
package chunk

import (
	"regexp"
	"strings"

	"filingpipe/pkg/core/filing"
)

// Strategy selects how a document is split.
type Strategy string

const (
	// StrategyFixed slides a fixed-size window with fixed character overlap.
	StrategyFixed Strategy = "fixed"
	// StrategySection splits on heading-like boundaries.
	StrategySection Strategy = "section"
	// StrategyAdaptive splits on paragraph (blank-line) boundaries.
	StrategyAdaptive Strategy = "adaptive"
)

// Config is the chunking profile for one filing type and section.
type Config struct {
	// MaxChunkSize is the chunk budget in characters.
	MaxChunkSize int
	// OverlapSize is the character overlap between consecutive chunks.
	OverlapSize int
	// UseSemanticChunking marks profiles where boundaries follow document
	// structure rather than raw offsets.
	UseSemanticChunking bool
	// Strategy selects the split algorithm.
	Strategy Strategy
}

// chunkingThreshold: chunking kicks in when the token estimate exceeds this
// fraction of the configured budget.
const chunkingThreshold = 0.9

// charsPerToken approximates the model tokenizer for English filing text.
const charsPerToken = 4

// EstimateTokens approximates the token count of a text.
func EstimateTokens(s string) int {
	return len(s) / charsPerToken
}

// ConfigFor returns the static chunking profile for a filing type, optionally
// tightened by the section-specific token budget table. Annual reports get
// large budgets with section-based chunking, current-event reports get small
// adaptive budgets, and unrecognized types get a conservative fixed default.
func ConfigFor(t filing.Type, section string) Config {
	var cfg Config
	switch t {
	case filing.Type10K, filing.Type20F:
		cfg = Config{MaxChunkSize: 32000, OverlapSize: 2000, UseSemanticChunking: true, Strategy: StrategySection}
	case filing.Type10Q, filing.Type6K:
		cfg = Config{MaxChunkSize: 24000, OverlapSize: 1500, UseSemanticChunking: true, Strategy: StrategySection}
	case filing.Type8K:
		cfg = Config{MaxChunkSize: 8000, OverlapSize: 500, UseSemanticChunking: true, Strategy: StrategyAdaptive}
	case filing.TypeS1, filing.TypeS4:
		cfg = Config{MaxChunkSize: 32000, OverlapSize: 2000, UseSemanticChunking: true, Strategy: StrategySection}
	case filing.Type424B, filing.TypeDEF14A, filing.TypeForm4:
		cfg = Config{MaxChunkSize: 16000, OverlapSize: 1000, UseSemanticChunking: true, Strategy: StrategyAdaptive}
	default:
		// Conservative default for unrecognized types, Generic included.
		cfg = Config{MaxChunkSize: 12000, OverlapSize: 800, Strategy: StrategyFixed}
	}

	if budget, ok := sectionTokenBudget(section); ok {
		cfg.MaxChunkSize = budget * charsPerToken
		cfg.OverlapSize = cfg.MaxChunkSize / 16
	}
	return cfg
}

// sectionTokenBudget is the per-section token allowance table. Dense
// narrative sections warrant more room than boilerplate-heavy ones.
func sectionTokenBudget(section string) (int, bool) {
	switch normalizeSectionName(section) {
	case "risk factors":
		return 12000, true
	case "managements discussion and analysis", "mda", "md&a":
		return 12000, true
	case "business":
		return 8000, true
	case "financial statements", "notes to financial statements":
		return 10000, true
	case "legal proceedings":
		return 4000, true
	case "executive compensation":
		return 6000, true
	default:
		return 0, false
	}
}

func normalizeSectionName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")
	return s
}

// NeedsChunking reports whether the document's token estimate exceeds 90% of
// the configured budget for the filing type and section.
func NeedsChunking(doc string, t filing.Type, section string) bool {
	cfg := ConfigFor(t, section)
	budget := cfg.MaxChunkSize / charsPerToken
	return float64(EstimateTokens(doc)) > chunkingThreshold*float64(budget)
}

// Split divides a document into chunks per the configured strategy. Documents
// within budget come back as a single chunk.
func Split(doc string, cfg Config) []string {
	if doc == "" {
		return nil
	}
	if len(doc) <= cfg.MaxChunkSize {
		return []string{doc}
	}

	switch cfg.Strategy {
	case StrategySection:
		return splitOnBoundaries(doc, splitSections(doc), cfg)
	case StrategyAdaptive:
		return splitOnBoundaries(doc, splitParagraphs(doc), cfg)
	default:
		return splitFixed(doc, cfg)
	}
}

// splitFixed slides a fixed window: chunk i starts at i*(size-overlap), so
// consecutive chunks share exactly OverlapSize characters and the
// non-overlapping portions concatenate back to the original document.
func splitFixed(doc string, cfg Config) []string {
	size := cfg.MaxChunkSize
	step := size - cfg.OverlapSize
	if step <= 0 {
		step = size
	}

	var chunks []string
	for start := 0; start < len(doc); start += step {
		end := start + size
		if end >= len(doc) {
			// The previous iteration did not break, so start+overlap is
			// still inside the document and this final chunk is always
			// longer than the overlap.
			chunks = append(chunks, doc[start:])
			break
		}
		chunks = append(chunks, doc[start:end])
	}
	return chunks
}

// headingLineRe matches heading-like boundaries: markdown headers, "Item 1A"
// style labels and short all-caps lines.
var headingLineRe = regexp.MustCompile(`(?mi)^(?:#{1,6}\s+.+|item\s+\d+[a-z]?\.?\s.*|part\s+[ivx]+\b.*|[A-Z][A-Z0-9 ,&.\-]{3,58})$`)

// splitSections breaks the document into segments at heading-like lines, the
// heading opening its segment.
func splitSections(doc string) []string {
	lines := strings.Split(doc, "\n")
	var segments []string
	var cur strings.Builder

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && headingLineRe.MatchString(trimmed) && cur.Len() > 0 {
			segments = append(segments, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
		cur.WriteString("\n")
	}
	if cur.Len() > 0 {
		segments = append(segments, cur.String())
	}
	return segments
}

// splitParagraphs breaks the document into blank-line-delimited paragraphs.
func splitParagraphs(doc string) []string {
	parts := strings.Split(doc, "\n\n")
	segments := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p += "\n\n"
		}
		segments = append(segments, p)
	}
	return segments
}

// splitOnBoundaries accumulates segments into a chunk until the next segment
// would exceed the budget, then closes the chunk and seeds the next one with
// a trailing overlap slice of the previous chunk's end. Segments larger than
// the budget on their own are split with the fixed window.
func splitOnBoundaries(doc string, segments []string, cfg Config) []string {
	var chunks []string
	var cur strings.Builder

	closeChunk := func() {
		if cur.Len() == 0 {
			return
		}
		chunk := cur.String()
		chunks = append(chunks, chunk)
		cur.Reset()
		if cfg.OverlapSize > 0 && len(chunk) > cfg.OverlapSize {
			cur.WriteString(chunk[len(chunk)-cfg.OverlapSize:])
		}
	}

	for _, seg := range segments {
		if len(seg) > cfg.MaxChunkSize {
			// A single oversized segment falls back to the fixed window.
			closeChunk()
			cur.Reset()
			chunks = append(chunks, splitFixed(seg, cfg)...)
			continue
		}
		if cur.Len() > 0 && cur.Len()+len(seg) > cfg.MaxChunkSize {
			closeChunk()
		}
		cur.WriteString(seg)
	}
	if strings.TrimSpace(cur.String()) != "" {
		chunks = append(chunks, cur.String())
	}

	if len(chunks) == 0 {
		return []string{doc}
	}
	return chunks
}
