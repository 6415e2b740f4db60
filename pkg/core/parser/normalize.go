package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"filingpipe/pkg/core/filing"
)

// englishPrinter renders grouped number formatting ($1,234.50).
var englishPrinter = message.NewPrinter(language.English)

// dateLayouts are the formats recognized before falling back to generic
// parsing. Order matters: ISO first.
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"2 January 2006",
	"2 Jan 2006",
}

// genericDateLayouts are the last-ditch formats before giving up.
var genericDateLayouts = []string{
	time.RFC3339,
	time.RFC1123,
	"2006/01/02",
	"January 2 2006",
	"02 Jan 06",
}

// NormalizeDate converts a recognized date string to YYYY-MM-DD. Unrecognized
// formats fall back to generic parsing and finally to returning the input
// unchanged.
func NormalizeDate(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

var nonNumericRe = regexp.MustCompile(`[^0-9.\-]`)

// NormalizeCurrency renders a monetary value as $X,XXX.XX. String inputs are
// stripped down to digits, '.' and '-'; multiple decimal points collapse to
// the last one. On parse failure the original string comes back prefixed with
// '$' if it wasn't already.
func NormalizeCurrency(v any) string {
	switch n := v.(type) {
	case float64:
		return renderCurrency(n)
	case int:
		return renderCurrency(float64(n))
	case int64:
		return renderCurrency(float64(n))
	}

	orig := fmt.Sprintf("%v", v)
	cleaned := nonNumericRe.ReplaceAllString(orig, "")
	if parts := strings.Split(cleaned, "."); len(parts) > 2 {
		cleaned = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		if !strings.HasPrefix(orig, "$") {
			return "$" + orig
		}
		return orig
	}
	return renderCurrency(f)
}

func renderCurrency(f float64) string {
	return "$" + englishPrinter.Sprintf("%.2f", f)
}

// NormalizePercentage renders a percentage as X.XX%. A bare numeric magnitude
// over 100 without an explicit '%' is read as basis points (divided by 100);
// a value in (-1, 1) is read as a fraction (multiplied by 100).
func NormalizePercentage(v any) string {
	var f float64
	explicitPct := false

	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		orig := fmt.Sprintf("%v", v)
		explicitPct = strings.Contains(orig, "%")
		cleaned := nonNumericRe.ReplaceAllString(orig, "")
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return orig
		}
		f = parsed
	}

	if !explicitPct {
		if f > 100 || f < -100 {
			f /= 100
		} else if f > -1 && f < 1 && f != 0 {
			f *= 100
		}
	}
	return fmt.Sprintf("%.2f%%", f)
}

var containsYearRe = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// normalizeForType applies filing-type specific post-processing. Common
// date-like fields are normalized for every type; financial-report types get
// currency/percentage treatment on financials, proxy statements on
// compensation and the meeting date. Generic and unrecognized types receive
// no type-specific normalization.
func normalizeForType(data map[string]any, t filing.Type) {
	for _, field := range []string{"filingDate", "reportDate"} {
		if s, ok := data[field].(string); ok {
			data[field] = NormalizeDate(s)
		}
	}
	if s, ok := data["period"].(string); ok && containsYearRe.MatchString(s) {
		data["period"] = NormalizeDate(s)
	}

	switch {
	case t.IsFinancialReport():
		items, ok := data["financials"].([]any)
		if !ok {
			return
		}
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if v, present := m["value"]; present {
				m["value"] = NormalizeCurrency(v)
			}
			if g, present := m["growth"]; present {
				m["growth"] = NormalizePercentage(g)
			}
		}
	case t == filing.TypeDEF14A:
		if s, ok := data["meetingDate"].(string); ok {
			data["meetingDate"] = NormalizeDate(s)
		}
		items, ok := data["executiveCompensation"].([]any)
		if !ok {
			return
		}
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if c, present := m["totalCompensation"]; present {
				m["totalCompensation"] = NormalizeCurrency(c)
			}
		}
	}
}
