package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdcosta/wordstats/dispatch"
)

var (
	workerListen  string
	workerNetwork string
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run one worker process",
	Long: `Serves chunk-classification requests from a coordinator until the
coordinator signals that all files are processed, then exits. Workers keep
no state between chunks, so any number of them can be pointed at by one
coordinator.`,
	Example: `  wordstats worker --listen 0.0.0.0:7701`,
	Args:    cobra.NoArgs,
	RunE:    runWorker,
}

func init() {
	workerCmd.Flags().StringVar(&workerListen, "listen", "", "address to listen on")
	workerCmd.Flags().StringVar(&workerNetwork, "network", "tcp", "listen network: tcp or unix")
}

func runWorker(cmd *cobra.Command, args []string) error {
	if workerListen == "" {
		cmd.SilenceUsage = false
		return fmt.Errorf("--listen is required")
	}

	w := dispatch.MakeWorker(logger)
	return w.Serve(workerNetwork, workerListen)
}
