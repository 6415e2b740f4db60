package extract

// SimplificationLevel enumerates the degradation strategies applied when a
// resource failure or repeated parsing failure suggests the original request
// was too ambitious for the current input. Each level is a deterministic
// mutation of the extraction options.
type SimplificationLevel string

const (
	// SimplifyBasicText drops everything but plain text content.
	SimplifyBasicText SimplificationLevel = "basic_text_only"
	// SimplifySkipTables disables table structuring.
	SimplifySkipTables SimplificationLevel = "skip_tables"
	// SimplifySkipLists disables list structuring.
	SimplifySkipLists SimplificationLevel = "skip_lists"
	// SimplifyIncludeBoilerplate skips the boilerplate-removal pass, which
	// can itself fail on pathological markup.
	SimplifyIncludeBoilerplate SimplificationLevel = "include_boilerplate"
	// SimplifyFirstParagraphs keeps only the leading paragraphs.
	SimplifyFirstParagraphs SimplificationLevel = "first_paragraphs"
	// SimplifyLowMemory tightens caps for memory-constrained runs.
	SimplifyLowMemory SimplificationLevel = "low_memory"
)

const firstParagraphsLimit = 20

// Simplify returns a copy of opts degraded per the given level. Unknown
// levels return the options unchanged.
func Simplify(level SimplificationLevel, opts Options) Options {
	switch level {
	case SimplifyBasicText:
		opts.ExtractTables = false
		opts.ExtractLists = false
		opts.IncludeRawHTML = false
	case SimplifySkipTables:
		opts.ExtractTables = false
	case SimplifySkipLists:
		opts.ExtractLists = false
	case SimplifyIncludeBoilerplate:
		opts.RemoveBoilerplate = false
	case SimplifyFirstParagraphs:
		opts.MaxParagraphs = firstParagraphsLimit
	case SimplifyLowMemory:
		opts.IncludeRawHTML = false
		if opts.MaxSectionLength == 0 || opts.MaxSectionLength > 2000 {
			opts.MaxSectionLength = 2000
		}
	}
	return opts
}
