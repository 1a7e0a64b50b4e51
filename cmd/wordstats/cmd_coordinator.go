package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdcosta/wordstats/dispatch"
)

var (
	coordFiles       []string
	coordChunkBytes  int
	coordWorkers     []string
	coordNetwork     string
	coordConfigPath  string
	coordRecvTimeout time.Duration
)

var coordinatorCmd = &cobra.Command{
	Use:   "coordinator",
	Short: "Run the coordinator over a pool of started workers",
	Long: `Reads each input file, splits it into word-aligned chunks, dispatches the
chunks round-by-round to the worker pool and prints the aggregated counts
for every file once all files are processed.

Input files may be local paths or "remoteID:/abs/path", in which case the
file is first staged from the matching remote host in the config file.`,
	Example: `  wordstats coordinator -f text0.txt -f text1.txt -m 4096 --workers 127.0.0.1:7701,127.0.0.1:7702`,
	Args:    cobra.NoArgs,
	RunE:    runCoordinator,
}

func init() {
	coordinatorCmd.Flags().StringArrayVarP(&coordFiles, "file", "f", nil, "file to process (repeatable)")
	coordinatorCmd.Flags().IntVarP(&coordChunkBytes, "chunk-bytes", "m", 0,
		fmt.Sprintf("maximum number of bytes per chunk (minimum %d)", dispatch.MinChunkBytes))
	coordinatorCmd.Flags().StringSliceVar(&coordWorkers, "workers", nil, "worker addresses")
	coordinatorCmd.Flags().StringVar(&coordNetwork, "network", "", "worker network: tcp or unix")
	coordinatorCmd.Flags().StringVar(&coordConfigPath, "config", "", "YAML config file")
	coordinatorCmd.Flags().DurationVar(&coordRecvTimeout, "recv-timeout", -1, "bound on each worker reply (0 disables)")
}

func coordinatorConfig() (*dispatch.Config, error) {
	cfg := dispatch.DefaultConfig()
	if coordConfigPath != "" {
		var err error
		if cfg, err = dispatch.LoadConfig(coordConfigPath); err != nil {
			return nil, err
		}
	}
	// flags override the config file
	if coordChunkBytes != 0 {
		cfg.ChunkBytes = coordChunkBytes
	}
	if len(coordWorkers) > 0 {
		cfg.Workers = coordWorkers
	}
	if coordNetwork != "" {
		cfg.Network = coordNetwork
	}
	if coordRecvTimeout >= 0 {
		cfg.RecvTimeout = dispatch.Duration(coordRecvTimeout)
	}
	return cfg, nil
}

func runCoordinator(cmd *cobra.Command, args []string) error {
	if len(coordFiles) == 0 {
		cmd.SilenceUsage = false
		return fmt.Errorf("at least one -f file is required")
	}
	if len(coordFiles) > dispatch.MaxFiles {
		return fmt.Errorf("can only process %d files at a time", dispatch.MaxFiles)
	}

	cfg, err := coordinatorConfig()
	if err != nil {
		return err
	}

	start := time.Now()

	coord, err := dispatch.MakeCoordinator(cfg, logger)
	if err != nil {
		return err
	}

	results, runErr := coord.Run(coordFiles)
	if err := coord.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	if runErr != nil {
		return runErr
	}

	elapsed := time.Since(start)
	printResults(results)
	fmt.Printf("\nElapsed time = %.6f s\n", elapsed.Seconds())
	return nil
}

func printResults(results []dispatch.FileTotals) {
	for _, r := range results {
		fmt.Fprintf(os.Stdout, "\nFile name: %s\n", r.Path)
		fmt.Printf("Total number of words = %d\n", r.Counts.Words)
		fmt.Printf("N. of words beginning with a vowel = %d\n", r.Counts.VowelStart)
		fmt.Printf("N. of words ending with a consonant = %d\n", r.Counts.ConsonantEnd)
	}
}
