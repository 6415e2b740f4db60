package parser

import (
	"encoding/json"
	"regexp"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// Textual repair patterns for the defects LLMs most commonly introduce.
var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	singleQuoteRe   = regexp.MustCompile(`'([^']*)'`)
	bareValueRe     = regexp.MustCompile(`:\s*([A-Za-z_][A-Za-z0-9_]*)\s*([,}\]])`)
	controlCharRe   = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f]")
)

// RepairJSON applies the fixed sequence of textual repairs: strip trailing
// commas, quote unquoted keys, convert single-quoted strings, quote bare
// identifier values, strip control characters. It is purely textual and makes
// no guarantee the result parses.
func RepairJSON(s string) string {
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2":`)
	s = singleQuoteRe.ReplaceAllString(s, `"$1"`)
	s = bareValueRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := bareValueRe.FindStringSubmatch(m)
		switch sub[1] {
		case "true", "false", "null":
			return m
		}
		return `: "` + sub[1] + `"` + sub[2]
	})
	s = controlCharRe.ReplaceAllString(s, "")
	return s
}

// parseRepaired attempts progressively more lenient decoding of a candidate:
// the textual repair sequence, then json-repair, then Hjson as the most
// permissive reading. Returns the decoded value, the text that parsed, and
// whether any stage succeeded.
func parseRepaired(s string) (any, string, bool) {
	repaired := RepairJSON(s)
	var v any
	if err := json.Unmarshal([]byte(repaired), &v); err == nil {
		return v, repaired, true
	}

	if fixed, err := jsonrepair.RepairJSON(s); err == nil {
		if err := json.Unmarshal([]byte(fixed), &v); err == nil {
			return v, fixed, true
		}
	}

	if err := hjson.Unmarshal([]byte(s), &v); err == nil {
		if _, ok := v.(map[string]any); ok {
			return v, s, true
		}
	}

	return nil, "", false
}
