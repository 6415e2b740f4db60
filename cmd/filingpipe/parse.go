package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"

	"filingpipe/pkg/core/filing"
	"filingpipe/pkg/core/monitor"
	"filingpipe/pkg/core/parser"
)

// streamChunkSize drives the --stream replay of a saved response file.
const streamChunkSize = 256

func parseCmd() *cobra.Command {
	var (
		filingType string
		strict     bool
		noPartial  bool
		normalize  bool
		metrics    bool
		stream     bool
		report     bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a saved LLM response into validated filing data",
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
			t := filing.ParseType(filingType)
			store := monitor.NewMetricsStore(monitor.DefaultCapacity, logger)

			if stream {
				if err := runStream(cmd, string(data), t, !noPartial, store); err != nil {
					return err
				}
			} else {
				opts := parser.ParseOptions{
					Strict:            strict,
					AllowPartial:      !noPartial,
					Normalize:         normalize,
					MaxRepairAttempts: 1,
					CollectMetrics:    metrics,
				}
				result := parser.New(logger, store).ParseResponse(string(data), t, opts)
				if err := printJSON(cmd, result); err != nil {
					return err
				}
			}

			if report {
				out, err := yaml.Marshal(store.Global())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filingType, "type", "t", "Generic", "SEC filing type (10-K, 10-Q, 8-K, ...)")
	cmd.Flags().BoolVar(&strict, "strict", false, "full-schema validation instead of the lenient default")
	cmd.Flags().BoolVar(&noPartial, "no-partial", false, "disable partial extraction fallbacks")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "apply filing-type specific normalization")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "attach stage timings to the result")
	cmd.Flags().BoolVar(&stream, "stream", false, "replay the file through the streaming parser")
	cmd.Flags().BoolVar(&report, "report", false, "print the monitor report after parsing")

	return cmd
}

// runStream replays the response through the streaming parser in fixed-size
// increments, printing each event as it fires.
func runStream(cmd *cobra.Command, text string, t filing.Type, allowPartial bool, store *monitor.MetricsStore) error {
	handlers := parser.StreamHandlers{
		OnPartial: func(m map[string]any) {
			fmt.Fprintf(cmd.OutOrStdout(), "partial: %d fields\n", len(m))
		},
		OnComplete: func(ext parser.ExtractedJSON) {
			_ = printJSON(cmd, ext)
		},
		OnError: func(err error) {
			fmt.Fprintln(cmd.ErrOrStderr(), "stream error:", err)
		},
	}

	sp := parser.NewStreamingParser(t, allowPartial, handlers, nil, store)
	for start := 0; start < len(text); start += streamChunkSize {
		end := start + streamChunkSize
		if end > len(text) {
			end = len(text)
		}
		sp.ProcessChunk(text[start:end])
	}
	sp.Finish()
	return nil
}
