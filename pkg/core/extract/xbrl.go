package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"filingpipe/pkg/core/recovery"
)

// XBRLFact is a single tagged value scraped from an inline-XBRL (iXBRL)
// filing document.
type XBRLFact struct {
	Tag        string  `json:"tag"`         // e.g. "us-gaap:Assets"
	Value      string  `json:"value"`       // Raw string value
	NumericVal float64 `json:"numeric_val"` // Parsed numeric value, 0 when non-numeric
	ContextRef string  `json:"context_ref"` // XBRL context reference
	Decimals   string  `json:"decimals"`    // Decimals attribute
	UnitRef    string  `json:"unit_ref"`    // Unit reference (e.g. "usd")
	Sign       string  `json:"sign,omitempty"`
}

// XBRLFacts scrapes ix:nonFraction and ix:nonNumeric facts from an inline-XBRL
// document. Documents with no inline XBRL return an empty slice, not an error.
func (e *HTMLExtractor) XBRLFacts(htmlContent string) ([]XBRLFact, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, recovery.Wrap(recovery.CategoryXBRL, "failed to parse inline XBRL document", err)
	}

	var facts []XBRLFact
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		name := goquery.NodeName(sel)
		if name != "ix:nonfraction" && name != "ix:nonnumeric" {
			return
		}

		fact := XBRLFact{
			Value: strings.TrimSpace(sel.Text()),
		}
		fact.Tag, _ = sel.Attr("name")
		fact.ContextRef, _ = sel.Attr("contextref")
		fact.UnitRef, _ = sel.Attr("unitref")
		fact.Decimals, _ = sel.Attr("decimals")
		fact.Sign, _ = sel.Attr("sign")
		if fact.Tag == "" {
			return
		}

		if name == "ix:nonfraction" {
			fact.NumericVal = parseXBRLNumber(fact.Value, fact.Sign)
		}
		facts = append(facts, fact)
	})

	return facts, nil
}

// parseXBRLNumber strips presentation formatting (commas, whitespace,
// parentheses for negatives) from a reported value.
func parseXBRLNumber(raw, sign string) float64 {
	s := strings.TrimSpace(raw)
	negative := sign == "-"
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if negative {
		v = -v
	}
	return v
}
