package extract

import (
	"bytes"
	"math"
	"regexp"
	"sort"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"

	"filingpipe/pkg/core/recovery"
)

// Heading and table heuristics for text-layer PDFs. These thresholds are
// deliberately named so behavior stays reproducible; they were tuned against
// EDGAR filing exhibits and prospectus PDFs.
const (
	// pdfHeadingMaxLen: lines shorter than this qualify as heading candidates.
	pdfHeadingMaxLen = 60
	// pdfTableMinRows: a candidate region needs at least this many rows.
	pdfTableMinRows = 3
	// pdfTableMinCols: a row band needs at least this many positioned items.
	pdfTableMinCols = 2
	// pdfColRecurrenceRatio: an x-position counts as a column when it recurs
	// in at least this fraction of the candidate rows.
	pdfColRecurrenceRatio = 0.5
	// pdfYProximity: glyphs within this many units of y are the same row band.
	pdfYProximity = 0.5
	// pdfRowGap: vertical gap beyond which two bands are no longer part of
	// the same candidate table.
	pdfRowGap = 20.0
)

// pdfIdentifierRe matches heading-ish lines built from an identifier-like
// character set ("Item 1A. Risk Factors", "Part II", section numbers).
var pdfIdentifierRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._:-]*$`)

// PDFExtractor parses text-layer PDF filings into a section tree.
type PDFExtractor struct {
	logger *zap.Logger
}

// NewPDFExtractor creates an extractor. A nil logger is replaced with a nop.
func NewPDFExtractor(logger *zap.Logger) *PDFExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExtractor{logger: logger}
}

// Extract decodes a PDF and returns its sections. The text pass splits pages
// into heading-delimited sections; a second structural pass over glyph
// positions detects tables. Individual page failures degrade to a partial
// result rather than failing the call.
func (e *PDFExtractor) Extract(data []byte, opts Options) ([]*FilingSection, error) {
	if len(data) == 0 {
		return nil, recovery.New(recovery.CategoryInvalidInput, "empty PDF document")
	}

	// Cheap structural sanity pass before full decode.
	pageCount, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, recovery.Wrap(recovery.CategoryPDF, "document failed PDF validation", err)
	}

	reader, err := ledongthuc.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, recovery.Wrap(recovery.CategoryPDF, "failed to open PDF", err)
	}

	var sections []*FilingSection
	if title := e.documentTitle(reader); title != "" {
		sections = append(sections, &FilingSection{
			Type:    SectionTitle,
			Title:   title,
			Content: capContent(title, opts),
		})
	}

	var tables []*FilingSection
	current := &FilingSection{Type: SectionGeneric}
	var content strings.Builder

	flush := func() {
		current.Content = capContent(content.String(), opts)
		if !current.empty() {
			sections = append(sections, current)
		}
		current = &FilingSection{Type: SectionGeneric}
		content.Reset()
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			// Partial results are the contract; a broken page is skipped.
			e.logger.Warn("failed to decode PDF page text", zap.Int("page", i), zap.Error(err))
			continue
		}

		for _, row := range rows {
			line := rowText(row)
			if line == "" {
				continue
			}
			if isPDFHeading(line) {
				flush()
				current.Title = line
				continue
			}
			content.WriteString(line)
			content.WriteString("\n")
		}

		if opts.ExtractTables {
			for _, tbl := range detectPDFTables(page.Content().Text) {
				tables = append(tables, &FilingSection{
					Type:      SectionTable,
					TableData: tbl,
					Content:   capContent(renderTableText(tbl), opts),
				})
			}
		}
	}
	flush()

	if opts.MaxParagraphs > 0 {
		sections = limitParagraphs(sections, opts.MaxParagraphs)
	}
	sections = append(sections, tables...)

	e.logger.Debug("pdf extraction complete",
		zap.Int("pages", pageCount),
		zap.Int("sections", len(sections)),
		zap.Int("tables", len(tables)))
	return sections, nil
}

func (e *PDFExtractor) documentTitle(reader *ledongthuc.Reader) string {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	title := info.Key("Title")
	if title.Kind() != ledongthuc.String {
		return ""
	}
	return strings.TrimSpace(title.Text())
}

func rowText(row *ledongthuc.Row) string {
	var b strings.Builder
	for _, t := range row.Content {
		b.WriteString(t.S)
	}
	return strings.TrimSpace(b.String())
}

// isPDFHeading applies the heading heuristic: a short line that is either
// all-uppercase or matches the identifier-like character set.
func isPDFHeading(line string) bool {
	if len(line) == 0 || len(line) >= pdfHeadingMaxLen {
		return false
	}
	if isAllUpper(line) {
		return true
	}
	return pdfIdentifierRe.MatchString(line)
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			hasLetter = true
		}
	}
	return hasLetter && strings.ToUpper(s) == s
}

// yBand groups positioned text fragments sharing (rounded) y-coordinates.
type yBand struct {
	y     float64
	items []ledongthuc.Text
}

// detectPDFTables finds table-like regions from glyph positions: rows are
// y-coordinate bands with enough items, a run of close consecutive bands
// forms a candidate, and columns are x-positions recurring in at least half
// the candidate rows. Each cell is assigned to its nearest inferred column.
func detectPDFTables(texts []ledongthuc.Text) [][][]string {
	if len(texts) == 0 {
		return nil
	}

	banded := make(map[float64][]ledongthuc.Text)
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		key := math.Round(t.Y/pdfYProximity) * pdfYProximity
		banded[key] = append(banded[key], t)
	}

	bands := make([]yBand, 0, len(banded))
	for y, items := range banded {
		sort.Slice(items, func(i, j int) bool { return items[i].X < items[j].X })
		bands = append(bands, yBand{y: y, items: items})
	}
	// Top of page first: PDF y grows upward.
	sort.Slice(bands, func(i, j int) bool { return bands[i].y > bands[j].y })

	var tables [][][]string
	var run []yBand

	closeRun := func() {
		if len(run) >= pdfTableMinRows {
			if tbl := bandsToTable(run); tbl != nil {
				tables = append(tables, tbl)
			}
		}
		run = nil
	}

	for _, b := range bands {
		if len(b.items) < pdfTableMinCols {
			closeRun()
			continue
		}
		if len(run) > 0 && run[len(run)-1].y-b.y > pdfRowGap {
			closeRun()
		}
		run = append(run, b)
	}
	closeRun()

	return tables
}

// bandsToTable infers column positions and assigns cells. Returns nil when
// fewer than pdfTableMinCols columns recur often enough.
func bandsToTable(run []yBand) [][]string {
	recurrence := make(map[float64]int)
	for _, b := range run {
		seen := make(map[float64]bool)
		for _, t := range b.items {
			x := math.Round(t.X)
			if !seen[x] {
				seen[x] = true
				recurrence[x]++
			}
		}
	}

	minCount := int(math.Ceil(pdfColRecurrenceRatio * float64(len(run))))
	var columns []float64
	for x, count := range recurrence {
		if count >= minCount {
			columns = append(columns, x)
		}
	}
	if len(columns) < pdfTableMinCols {
		return nil
	}
	sort.Float64s(columns)

	rows := make([][]string, 0, len(run))
	for _, b := range run {
		cells := make([]string, len(columns))
		for _, t := range b.items {
			idx := nearestColumn(columns, t.X)
			if cells[idx] != "" {
				cells[idx] += " "
			}
			cells[idx] += strings.TrimSpace(t.S)
		}
		rows = append(rows, cells)
	}
	return rows
}

func nearestColumn(columns []float64, x float64) int {
	best := 0
	bestDist := math.Abs(columns[0] - x)
	for i := 1; i < len(columns); i++ {
		if d := math.Abs(columns[i] - x); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
