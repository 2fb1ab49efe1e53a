package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the broker to be ready",
	Long: `Wait for the broker to be ready by polling the health endpoint.

This command will repeatedly check the broker's health until it responds
successfully or the maximum number of retries is reached.

Example:
  brokerctl wait
  brokerctl wait --port 8082 --retries 60`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		retries, _ := cmd.Flags().GetInt("retries")

		if err := waitForBroker(port, retries); err != nil {
			fmt.Fprintf(os.Stderr, "Broker did not become ready: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntP("port", "p", defaultPortInt(), "Status API port to check")
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
}

func waitForBroker(port, retries int) error {
	url := fmt.Sprintf("http://localhost:%d/health", port)
	client := &http.Client{Timeout: 2 * time.Second}

	fmt.Println("Waiting for broker to be ready...")

	for i := 0; i < retries; i++ {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				fmt.Println()
				fmt.Println("Broker is ready")
				return nil
			}
		}

		fmt.Print(".")
		time.Sleep(1 * time.Second)
	}

	fmt.Println()
	return fmt.Errorf("broker is not ready after %d seconds", retries)
}
