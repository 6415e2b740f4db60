package main

import (
	"os"

	"github.com/spf13/cobra"

	"filingpipe/pkg/core/chunk"
	"filingpipe/pkg/core/filing"
)

func chunkCmd() *cobra.Command {
	var (
		filingType string
		section    string
	)

	cmd := &cobra.Command{
		Use:   "chunk <file>",
		Short: "Decide and perform context-window chunking for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc := string(data)
			t := filing.ParseType(filingType)
			cfg := chunk.ConfigFor(t, section)

			type chunkOutput struct {
				FilingType      string       `json:"filing_type"`
				Section         string       `json:"section,omitempty"`
				EstimatedTokens int          `json:"estimated_tokens"`
				NeedsChunking   bool         `json:"needs_chunking"`
				Config          chunk.Config `json:"config"`
				Chunks          []string     `json:"chunks"`
			}

			return printJSON(cmd, chunkOutput{
				FilingType:      t.String(),
				Section:         section,
				EstimatedTokens: chunk.EstimateTokens(doc),
				NeedsChunking:   chunk.NeedsChunking(doc, t, section),
				Config:          cfg,
				Chunks:          chunk.Split(doc, cfg),
			})
		},
	}

	cmd.Flags().StringVarP(&filingType, "type", "t", "Generic", "SEC filing type (10-K, 10-Q, 8-K, ...)")
	cmd.Flags().StringVarP(&section, "section", "s", "", "filing section name for token budgeting")

	return cmd
}
