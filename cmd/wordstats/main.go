package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger

	debugMode bool
)

var rootCmd = &cobra.Command{
	Use:   "wordstats",
	Short: "Distributed word statistics over chunked text files",
	Long: `wordstats counts the total number of words, the words beginning with a
vowel and the words ending with a consonant across one or more text files.

A single coordinator process owns the input files, splits them into chunks
that never cut a word in half, and fans the chunks out to a fixed pool of
worker processes over RPC. Start the workers first, then the coordinator.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = buildLogger(debugMode)
		if err != nil {
			return fmt.Errorf("initialize logging: %w", err)
		}
		return nil
	},
}

func buildLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.AddCommand(coordinatorCmd)
	rootCmd.AddCommand(workerCmd)

	// bad flags get the usage text; runtime failures stay on one line
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintln(os.Stderr, cmd.UsageString())
		return err
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wordstats: %v\n", err)
		os.Exit(1)
	}
}
