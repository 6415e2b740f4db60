package parser

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// candidate is a substring believed to contain JSON, tagged with the strategy
// that found it.
type candidate struct {
	raw    string
	method string
}

// ExtractJSON pulls a JSON payload out of free-form model text using a
// cascade of strategies in strict priority order: json-tagged fenced code
// block, any fenced code block, first-{-to-last-} bracket span, largest
// balanced top-level object, then (with allowPartial) a best-effort key-value
// scan. Candidates that fail a direct parse get one pass through the textual
// repair cascade before partial extraction is attempted.
func ExtractJSON(input string, allowPartial bool) ExtractedJSON {
	return extractJSON(input, allowPartial, 1)
}

func extractJSON(input string, allowPartial bool, repairAttempts int) ExtractedJSON {
	candidates := collectCandidates(input)

	for _, c := range candidates {
		var v any
		if err := json.Unmarshal([]byte(c.raw), &v); err == nil {
			return ExtractedJSON{Raw: c.raw, Parsed: v, Method: c.method, Success: true}
		}
	}

	// Repair runs before partial extraction: a repaired full object keeps
	// nested structure the key-value scan would flatten away.
	for attempt := 0; attempt < repairAttempts; attempt++ {
		for _, c := range candidates {
			if v, repaired, ok := parseRepaired(c.raw); ok {
				return ExtractedJSON{Raw: repaired, Parsed: v, Method: c.method + repairedSuffix, Success: true}
			}
		}
	}

	if allowPartial {
		if m := ExtractKeyValues(input); len(m) > 0 {
			return ExtractedJSON{Raw: input, Parsed: m, Method: MethodPartial, Success: true}
		}
	}

	return ExtractedJSON{
		Raw:    input,
		Err:    "no parseable JSON found in response text",
		Method: MethodNone,
	}
}

// collectCandidates gathers candidate substrings in strategy priority order.
func collectCandidates(input string) []candidate {
	var out []candidate

	jsonBlocks, anyBlocks := fencedBlocks(input)
	for _, b := range jsonBlocks {
		out = append(out, candidate{raw: b, method: MethodCodeBlock})
	}
	for _, b := range anyBlocks {
		out = append(out, candidate{raw: b, method: MethodCodeBlock})
	}

	if i, j := strings.Index(input, "{"), strings.LastIndex(input, "}"); i >= 0 && j > i {
		out = append(out, candidate{raw: input[i : j+1], method: MethodBracketMatching})
	}

	for _, span := range balancedObjects(input) {
		out = append(out, candidate{raw: span, method: MethodLargestStructure})
	}

	return out
}

// fencedBlocks walks the markdown AST and returns fenced code block contents,
// json-tagged blocks separated from the rest.
func fencedBlocks(input string) (jsonBlocks, otherBlocks []string) {
	src := []byte(input)
	doc := goldmark.DefaultParser().Parse(gmtext.NewReader(src))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var b strings.Builder
		lines := fc.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(src))
		}
		content := strings.TrimSpace(b.String())
		if content == "" {
			return ast.WalkContinue, nil
		}

		if strings.EqualFold(string(fc.Language(src)), "json") {
			jsonBlocks = append(jsonBlocks, content)
		} else {
			otherBlocks = append(otherBlocks, content)
		}
		return ast.WalkContinue, nil
	})
	return jsonBlocks, otherBlocks
}

// balancedObjects scans for all balanced-brace top-level objects, tracking
// string and escape state so braces inside string literals are ignored.
// Spans come back largest first.
func balancedObjects(input string) []string {
	var spans []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(input); i++ {
		c := input[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					spans = append(spans, input[start:i+1])
					start = -1
				}
			}
		}
	}

	sort.Slice(spans, func(i, j int) bool { return len(spans[i]) > len(spans[j]) })
	return spans
}

// keyValueRe scans for quoted "key": value pairs with string, one-level
// object/array, or bare literal values. It deliberately does not handle
// deeper nesting or values containing escaped quotes: existing partial-result
// consumers depend on this best-effort behavior.
var keyValueRe = regexp.MustCompile(`"([^"]+)"\s*:\s*("(?:[^"\\]|\\.)*"|\{[^{}]*\}|\[[^\[\]]*\]|-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?|true|false|null)`)

// ExtractKeyValues assembles a best-effort object from key-value pairs found
// anywhere in the text, even without balanced braces.
func ExtractKeyValues(input string) map[string]any {
	matches := keyValueRe.FindAllStringSubmatch(input, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make(map[string]any, len(matches))
	for _, m := range matches {
		key, rawVal := m[1], m[2]
		var v any
		if err := json.Unmarshal([]byte(rawVal), &v); err == nil {
			out[key] = v
			continue
		}
		// Malformed nested value: keep the raw text rather than dropping it.
		out[key] = strings.Trim(rawVal, `"`)
	}
	return out
}
