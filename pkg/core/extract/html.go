package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"filingpipe/pkg/core/recovery"
)

// HTMLExtractor parses SEC filing HTML into a section tree. SEC EDGAR HTML is
// notoriously unsemantic (styled <p> tags instead of headings, spacer images,
// page-number footers), so extraction runs a cleanup pass before the
// structural walk.
type HTMLExtractor struct {
	logger *zap.Logger
}

// NewHTMLExtractor creates an extractor. A nil logger is replaced with a nop.
func NewHTMLExtractor(logger *zap.Logger) *HTMLExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLExtractor{logger: logger}
}

// Extract parses raw HTML and returns the ordered section tree. Malformed
// input fails with a ParserError of category html; missing optional structure
// (no title, no tables, no lists) never fails the call.
func (e *HTMLExtractor) Extract(htmlContent string, opts Options) ([]*FilingSection, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return nil, recovery.New(recovery.CategoryInvalidInput, "empty HTML document")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, recovery.Wrap(recovery.CategoryHTML, "failed to parse HTML document", err)
	}

	if opts.RemoveBoilerplate {
		e.removeBoilerplate(doc)
	}
	e.fixFakeHeaders(doc)

	// Tables and lists are collected over the original structure before the
	// structural walk starts removing nodes.
	var tables, lists []*FilingSection
	if opts.ExtractTables {
		tables = e.extractTables(doc, opts)
	}
	if opts.ExtractLists {
		lists = e.extractLists(doc, opts)
	}

	var sections []*FilingSection
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		sections = append(sections, &FilingSection{
			Type:    SectionTitle,
			Title:   title,
			Content: capContent(title, opts),
		})
	}

	body := doc.Find("body").First()
	structural := e.walkBody(body, opts)
	if len(structural) == 0 {
		// No structural containers at all: fall back to whole-body text.
		if text := capContent(body.Text(), opts); text != "" {
			structural = append(structural, &FilingSection{Type: SectionGeneric, Content: text})
		}
	}
	sections = append(sections, structural...)

	if opts.MaxParagraphs > 0 {
		sections = limitParagraphs(sections, opts.MaxParagraphs)
	}

	sections = append(sections, tables...)
	sections = append(sections, lists...)

	e.logger.Debug("html extraction complete",
		zap.Int("sections", len(sections)),
		zap.Int("tables", len(tables)),
		zap.Int("lists", len(lists)))
	return sections, nil
}

// walkBody converts the body's top-level children into sections: block
// containers recurse via extractSection, loose headings become HEADER nodes
// and loose paragraphs become PARAGRAPH nodes.
func (e *HTMLExtractor) walkBody(body *goquery.Selection, opts Options) []*FilingSection {
	var out []*FilingSection
	body.Children().Each(func(_ int, sel *goquery.Selection) {
		switch goquery.NodeName(sel) {
		case "div", "section", "article":
			if sec := e.extractSection(sel, opts); sec != nil {
				out = append(out, sec)
			}
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if text := capContent(sel.Text(), opts); text != "" {
				out = append(out, &FilingSection{Type: SectionHeader, Title: text, Content: text})
			}
		case "p":
			if text := capContent(sel.Text(), opts); text != "" {
				sec := &FilingSection{Type: SectionParagraph, Content: text}
				if opts.IncludeRawHTML {
					if h, err := goquery.OuterHtml(sel); err == nil {
						sec.RawHTML = h
					}
				}
				out = append(out, sec)
			}
		case "table", "ol", "ul", "title", "head":
			// Tables and lists are handled by their dedicated passes.
		default:
			if text := capContent(sel.Text(), opts); text != "" {
				out = append(out, &FilingSection{Type: SectionParagraph, Content: text})
			}
		}
	})
	return out
}

// extractSection converts one block container into a SECTION node. Nested
// containers are recursed into and removed first, so the parent's content
// reflects only text not already claimed by a child. The first remaining
// heading becomes the section title and is removed from the content.
func (e *HTMLExtractor) extractSection(sel *goquery.Selection, opts Options) *FilingSection {
	sec := &FilingSection{Type: SectionGeneric}
	if opts.IncludeRawHTML {
		if h, err := goquery.OuterHtml(sel); err == nil {
			sec.RawHTML = h
		}
	}

	sel.ChildrenFiltered("div, section, article").Each(func(_ int, child *goquery.Selection) {
		if cs := e.extractSection(child, opts); cs != nil {
			sec.Children = append(sec.Children, cs)
		}
		child.Remove()
	})

	if heading := sel.Find("h1, h2, h3, h4, h5, h6").First(); heading.Length() > 0 {
		sec.Title = strings.TrimSpace(heading.Text())
		heading.Remove()
	}

	sec.Content = capContent(sel.Text(), opts)

	if sec.empty() {
		return nil
	}
	return sec
}

// extractTables scans every <table>, structuring rows and cells and keeping a
// plain-text rendering as fallback content. Table titles come from a
// <caption> or the nearest preceding heading when available.
func (e *HTMLExtractor) extractTables(doc *goquery.Document, opts Options) []*FilingSection {
	var out []*FilingSection
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		var rows [][]string
		sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})
		if len(rows) == 0 {
			return
		}

		sec := &FilingSection{
			Type:      SectionTable,
			Title:     tableTitle(sel),
			TableData: rows,
			Content:   capContent(renderTableText(rows), opts),
		}
		if opts.IncludeRawHTML {
			if h, err := goquery.OuterHtml(sel); err == nil {
				sec.RawHTML = h
			}
		}
		out = append(out, sec)
	})
	return out
}

// extractLists scans top-level <ol>/<ul> elements. Ordered lists render
// numbered, unordered render bulleted. Nested lists are folded into their
// parent's items.
func (e *HTMLExtractor) extractLists(doc *goquery.Document, opts Options) []*FilingSection {
	var out []*FilingSection
	doc.Find("ol, ul").Each(func(_ int, sel *goquery.Selection) {
		// Nested lists are covered by their outermost ancestor.
		if sel.ParentsFiltered("ol, ul").Length() > 0 {
			return
		}

		var items []string
		sel.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			if text := strings.TrimSpace(li.Text()); text != "" {
				items = append(items, normalizeWhitespace(text))
			}
		})
		if len(items) == 0 {
			return
		}

		ordered := goquery.NodeName(sel) == "ol"
		sec := &FilingSection{
			Type:      SectionList,
			Title:     tableTitle(sel),
			ListItems: items,
			Content:   capContent(renderListText(items, ordered), opts),
		}
		if opts.IncludeRawHTML {
			if h, err := goquery.OuterHtml(sel); err == nil {
				sec.RawHTML = h
			}
		}
		out = append(out, sec)
	})
	return out
}

// tableTitle infers a title from a <caption> child or from the nearest
// preceding sibling heading. Returns "" when neither exists.
func tableTitle(sel *goquery.Selection) string {
	if caption := strings.TrimSpace(sel.Find("caption").First().Text()); caption != "" {
		return caption
	}
	for prev := sel.Prev(); prev.Length() > 0; prev = prev.Prev() {
		switch goquery.NodeName(prev) {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			return strings.TrimSpace(prev.Text())
		}
		// Stop at the first non-trivial element; only empty spacers are
		// skipped on the way to a heading.
		if strings.TrimSpace(prev.Text()) != "" {
			return ""
		}
	}
	return ""
}

func renderTableText(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, " | "))
	}
	return strings.Join(lines, "\n")
}

func renderListText(items []string, ordered bool) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		if ordered {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, item))
		} else {
			lines = append(lines, "- "+item)
		}
	}
	return strings.Join(lines, "\n")
}

// limitParagraphs keeps only the first max content-bearing sections, used by
// the first-paragraphs simplification level.
func limitParagraphs(sections []*FilingSection, max int) []*FilingSection {
	if len(sections) <= max {
		return sections
	}
	return sections[:max]
}

var (
	fontSizeRe    = regexp.MustCompile(`font-size:\s*(\d+)(?:\.\d*)?pt`)
	pageNumberRe  = regexp.MustCompile(`^(?:Page\s*)?\d+$|^-\s*\d+\s*-$|^[A-Z]?-\d+$`)
	sectionNameRe = regexp.MustCompile(`(?i)^(?:Item\s+\d|PART\s+[IVX]+|Note\s+\d|CONSOLIDATED\s+|FINANCIAL\s+STATEMENTS|BALANCE\s+SHEET|STATEMENTS?\s+OF)`)
)

// removeBoilerplate strips elements that add no value for extraction:
// scripts, styles, navigation, footers, hidden elements, spacer images and
// page-number markers.
func (e *HTMLExtractor) removeBoilerplate(doc *goquery.Document) {
	doc.Find("script, style, noscript, nav, footer, iframe, form").Remove()
	doc.Find("[hidden], [style*='display:none'], [style*='display: none']").Remove()

	// Spacer and tracking images. Real figures keep their alt text.
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		width, _ := sel.Attr("width")
		height, _ := sel.Attr("height")
		if src == "" || strings.Contains(src, "spacer") || strings.Contains(src, "blank") ||
			width == "1" || height == "1" {
			sel.Remove()
		}
	})

	// Page-number footers, common in paginated EDGAR documents.
	doc.Find("p, div, span").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) < 20 && pageNumberRe.MatchString(text) {
			sel.Remove()
		}
	})
}

// fixFakeHeaders promotes styled <p>/<span>/<b> elements to semantic headings.
// EDGAR filings routinely fake headings with inline font styling, which would
// otherwise defeat the heading-driven section walk.
func (e *HTMLExtractor) fixFakeHeaders(doc *goquery.Document) {
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		style, ok := sel.Attr("style")
		if !ok {
			return
		}
		styleLower := strings.ToLower(style)
		if !isBoldStyle(styleLower) {
			return
		}
		// 14pt+ reads as a major heading, 12pt+ as a minor one.
		if hasFontSize(styleLower, 14) {
			convertToHeading(sel, "h2")
		} else if hasFontSize(styleLower, 12) {
			convertToHeading(sel, "h3")
		}
	})

	doc.Find("b, strong").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if !sectionNameRe.MatchString(text) {
			return
		}
		parent := sel.Parent()
		switch goquery.NodeName(parent) {
		case "p", "div":
			convertToHeading(parent, "h2")
		}
	})
}

func isBoldStyle(style string) bool {
	return strings.Contains(style, "font-weight:bold") ||
		strings.Contains(style, "font-weight: bold") ||
		strings.Contains(style, "font-weight:700") ||
		strings.Contains(style, "font-weight: 700")
}

func hasFontSize(style string, minPt int) bool {
	m := fontSizeRe.FindStringSubmatch(style)
	if len(m) < 2 {
		return false
	}
	var size int
	fmt.Sscanf(m[1], "%d", &size)
	return size >= minPt
}

func convertToHeading(sel *goquery.Selection, tag string) {
	inner, _ := sel.Html()
	sel.ReplaceWithHtml(fmt.Sprintf("<%s>%s</%s>", tag, inner, tag))
}
