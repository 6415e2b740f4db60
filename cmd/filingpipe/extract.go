package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"filingpipe/pkg/core/extract"
)

func extractCmd() *cobra.Command {
	var (
		format         string
		includeRawHTML bool
		maxSectionLen  int
		noTables       bool
		noLists        bool
		keepBoiler     bool
		xbrlFacts      bool
	)

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract the section tree from an HTML or PDF filing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			opts := extract.DefaultOptions()
			opts.IncludeRawHTML = includeRawHTML
			opts.MaxSectionLength = maxSectionLen
			opts.ExtractTables = !noTables
			opts.ExtractLists = !noLists
			opts.RemoveBoilerplate = !keepBoiler

			kind := format
			if kind == "auto" {
				kind = sniffFormat(args[0], data)
			}

			var sections []*extract.FilingSection
			switch kind {
			case "pdf":
				sections, err = extract.NewPDFExtractor(logger).Extract(data, opts)
			case "html":
				html := extract.NewHTMLExtractor(logger)
				if xbrlFacts {
					facts, ferr := html.XBRLFacts(string(data))
					if ferr != nil {
						return ferr
					}
					return printJSON(cmd, facts)
				}
				sections, err = html.Extract(string(data), opts)
			default:
				return fmt.Errorf("unsupported format %q (want html or pdf)", kind)
			}
			if err != nil {
				return err
			}

			return printJSON(cmd, sections)
		},
	}

	cmd.Flags().StringVar(&format, "format", "auto", "document format: html, pdf or auto")
	cmd.Flags().BoolVar(&includeRawHTML, "raw-html", false, "retain original markup per section")
	cmd.Flags().IntVar(&maxSectionLen, "max-section-length", 10000, "truncate section content (0 = unlimited)")
	cmd.Flags().BoolVar(&noTables, "no-tables", false, "skip table structuring")
	cmd.Flags().BoolVar(&noLists, "no-lists", false, "skip list structuring")
	cmd.Flags().BoolVar(&keepBoiler, "keep-boilerplate", false, "skip boilerplate removal")
	cmd.Flags().BoolVar(&xbrlFacts, "xbrl", false, "scrape inline-XBRL facts instead of sections (html only)")

	return cmd
}

func sniffFormat(path string, data []byte) string {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") || bytes.HasPrefix(data, []byte("%PDF")) {
		return "pdf"
	}
	return "html"
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
