package extract

import (
	"errors"
	"strings"
	"testing"

	ledongthuc "github.com/ledongthuc/pdf"

	"filingpipe/pkg/core/recovery"
)

func TestIsPDFHeading(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"RISK FACTORS", true},
		{"Item 1A. Risk Factors", true},
		{"PART II", true},
		{"The company reported revenue growth, driven by volume.", false},
		{strings.Repeat("A", pdfHeadingMaxLen), false},
		{"", false},
	}

	for _, tc := range cases {
		if got := isPDFHeading(tc.line); got != tc.want {
			t.Errorf("isPDFHeading(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestIsAllUpper(t *testing.T) {
	if !isAllUpper("CONSOLIDATED BALANCE SHEETS") {
		t.Error("expected all-caps line to qualify")
	}
	if isAllUpper("Mixed Case Line") {
		t.Error("expected mixed case to fail")
	}
	if isAllUpper("---") {
		t.Error("expected a line with no letters to fail")
	}
}

// grid builds positioned text for a row of cells at the given y.
func gridRow(y float64, cells ...string) []ledongthuc.Text {
	xs := []float64{50, 150, 250, 350}
	out := make([]ledongthuc.Text, 0, len(cells))
	for i, c := range cells {
		out = append(out, ledongthuc.Text{S: c, X: xs[i], Y: y})
	}
	return out
}

func TestDetectPDFTables_AlignedGrid(t *testing.T) {
	var texts []ledongthuc.Text
	texts = append(texts, gridRow(700, "Metric", "FY22", "FY23")...)
	texts = append(texts, gridRow(690, "Revenue", "90", "100")...)
	texts = append(texts, gridRow(680, "Net Income", "9", "12")...)

	tables := detectPDFTables(texts)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	tbl := tables[0]
	if len(tbl) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(tbl))
	}
	if len(tbl[0]) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(tbl[0]))
	}
	if tbl[1][0] != "Revenue" || tbl[1][2] != "100" {
		t.Errorf("unexpected cells: %v", tbl)
	}
}

func TestDetectPDFTables_ProseIgnored(t *testing.T) {
	// One fragment per line reads as prose, not as a table.
	texts := []ledongthuc.Text{
		{S: "The company operates in two segments.", X: 50, Y: 700},
		{S: "Revenue grew in both.", X: 50, Y: 690},
		{S: "Costs were flat.", X: 50, Y: 680},
		{S: "Margins improved.", X: 50, Y: 670},
	}

	if tables := detectPDFTables(texts); len(tables) != 0 {
		t.Errorf("expected no tables in prose, got %d", len(tables))
	}
}

func TestDetectPDFTables_RowGapBreaksRun(t *testing.T) {
	var texts []ledongthuc.Text
	// Two aligned rows near the top: below the minimum row count.
	texts = append(texts, gridRow(700, "A", "B")...)
	texts = append(texts, gridRow(695, "C", "D")...)
	// Far below, a full three-row region.
	texts = append(texts, gridRow(500, "Metric", "Value")...)
	texts = append(texts, gridRow(490, "Revenue", "100")...)
	texts = append(texts, gridRow(480, "Income", "12")...)

	tables := detectPDFTables(texts)
	if len(tables) != 1 {
		t.Fatalf("expected only the lower region to qualify, got %d tables", len(tables))
	}
	if tables[0][0][0] != "Metric" {
		t.Errorf("unexpected first cell: %v", tables[0])
	}
}

func TestDetectPDFTables_Empty(t *testing.T) {
	if tables := detectPDFTables(nil); tables != nil {
		t.Errorf("expected nil for no input, got %v", tables)
	}
}

func TestPDFExtract_EmptyInput(t *testing.T) {
	_, err := NewPDFExtractor(nil).Extract(nil, DefaultOptions())
	if err == nil {
		t.Fatal("expected an error for empty input")
	}
	var pe *recovery.ParserError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a ParserError, got %T", err)
	}
	if pe.Category != recovery.CategoryInvalidInput {
		t.Errorf("expected category %s, got %s", recovery.CategoryInvalidInput, pe.Category)
	}
}

func TestPDFExtract_NotAPDF(t *testing.T) {
	_, err := NewPDFExtractor(nil).Extract([]byte("this is not a pdf document at all"), DefaultOptions())
	if err == nil {
		t.Fatal("expected an error for a non-PDF payload")
	}
	var pe *recovery.ParserError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a ParserError, got %T", err)
	}
	if pe.Category != recovery.CategoryPDF {
		t.Errorf("expected category %s, got %s", recovery.CategoryPDF, pe.Category)
	}
}
