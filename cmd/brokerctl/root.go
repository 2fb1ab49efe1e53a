package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brokerctl",
	Short: "Proving broker for the proof market",
	Long: `brokerctl runs and manages the proving broker.

The broker watches priced proof requests, commits to the ones it can prove
profitably and on time, locks them on the market, and tracks them through
the proving pipeline.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
