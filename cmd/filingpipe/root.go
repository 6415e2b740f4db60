package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "FILINGPIPE"

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filingpipe",
		Short: "Extract, chunk and parse SEC filing documents",
		Long: `filingpipe is the document-to-structured-data pipeline for SEC filings:
it extracts sectioned content from HTML and PDF filings, decides context-window
chunking, and converts raw LLM summarization replies into validated,
filing-type specific records.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd)
		},
	}

	cmd.PersistentFlags().String("config", "", "config file (default: ./filingpipe.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	cmd.AddCommand(extractCmd())
	cmd.AddCommand(chunkCmd())
	cmd.AddCommand(parseCmd())

	return cmd
}

func initConfig(cmd *cobra.Command) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	} else {
		viper.SetConfigName("filingpipe")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		// A missing default config file is fine.
		_ = viper.ReadInConfig()
	}

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Flags the user did not set explicitly resolve through viper, so
	// FILINGPIPE_* env vars and filingpipe.yaml entries take effect.
	var flagErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		if v := viper.GetString(f.Name); v != f.Value.String() {
			flagErr = cmd.Flags().Set(f.Name, v)
		}
	})
	return flagErr
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
