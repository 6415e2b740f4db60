// Package extract turns raw filing documents (HTML or PDF bytes) into a tree
// of typed sections. Extraction is best-effort by contract: missing optional
// structure (no tables, no lists, no title) never fails the overall call.
package extract

import (
	"strings"
	"unicode/utf8"
)

// SectionType identifies the role of a node in the extracted document tree.
type SectionType string

const (
	SectionTitle     SectionType = "title"
	SectionHeader    SectionType = "header"
	SectionParagraph SectionType = "paragraph"
	SectionTable     SectionType = "table"
	SectionList      SectionType = "list"
	SectionGeneric   SectionType = "section"
)

// FilingSection is one node of the extracted document tree. Sections are
// created once per extraction pass and never mutated afterwards; the returned
// tree is owned exclusively by the caller.
type FilingSection struct {
	Type      SectionType      `json:"type"`
	Title     string           `json:"title,omitempty"`
	Content   string           `json:"content,omitempty"`
	RawHTML   string           `json:"raw_html,omitempty"`
	TableData [][]string       `json:"table_data,omitempty"`
	ListItems []string         `json:"list_items,omitempty"`
	Children  []*FilingSection `json:"children,omitempty"`
}

// Text returns the section's content plus all descendant content, depth-first.
func (s *FilingSection) Text() string {
	var b strings.Builder
	s.appendText(&b)
	return strings.TrimSpace(b.String())
}

func (s *FilingSection) appendText(b *strings.Builder) {
	if s.Content != "" {
		b.WriteString(s.Content)
		b.WriteString("\n")
	}
	for _, c := range s.Children {
		c.appendText(b)
	}
}

// empty reports whether a generic section carries no usable payload. Empty
// sections are dropped during extraction.
func (s *FilingSection) empty() bool {
	return s.Content == "" && len(s.Children) == 0 && len(s.TableData) == 0 && len(s.ListItems) == 0
}

// Options controls an extraction pass.
type Options struct {
	// IncludeRawHTML retains the original markup on each section.
	IncludeRawHTML bool
	// MaxSectionLength truncates section content, appending an ellipsis
	// marker. Zero means no cap.
	MaxSectionLength int
	// PreserveWhitespace skips whitespace normalization.
	PreserveWhitespace bool
	// ExtractTables structures <table>-like regions into TABLE sections.
	ExtractTables bool
	// ExtractLists structures ordered/unordered lists into LIST sections.
	ExtractLists bool
	// RemoveBoilerplate strips script/style/nav/footer regions first.
	RemoveBoilerplate bool
	// MaxParagraphs keeps only the first N paragraph-bearing sections.
	// Zero means unlimited. Set by the first-paragraphs simplification.
	MaxParagraphs int
}

// DefaultOptions is the standard extraction profile for SEC filings.
func DefaultOptions() Options {
	return Options{
		MaxSectionLength:  10000,
		ExtractTables:     true,
		ExtractLists:      true,
		RemoveBoilerplate: true,
	}
}

const ellipsisMarker = "..."

// capContent applies MaxSectionLength and whitespace normalization per opts.
func capContent(content string, opts Options) string {
	if !opts.PreserveWhitespace {
		content = normalizeWhitespace(content)
	}
	if opts.MaxSectionLength > 0 && len(content) > opts.MaxSectionLength {
		// Back off to a rune boundary so the cut never leaves invalid UTF-8.
		cut := opts.MaxSectionLength
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut] + ellipsisMarker
	}
	return content
}

// normalizeWhitespace collapses runs of whitespace to single spaces while
// preserving paragraph breaks (blank lines).
func normalizeWhitespace(s string) string {
	paragraphs := strings.Split(s, "\n\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		fields := strings.Fields(p)
		if len(fields) == 0 {
			continue
		}
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, "\n\n")
}
