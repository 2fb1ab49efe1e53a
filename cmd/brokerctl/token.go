package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zkmarket/broker/pkg/server/middleware"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the status API",
	Long: `Issue a bearer token for the status API.

The token is signed with BROKER_API_SECRET, which must match the secret
the broker was started with.

Example:
  brokerctl token --subject ops --ttl 24h`,
	Run: func(cmd *cobra.Command, args []string) {
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		if os.Getenv("BROKER_API_SECRET") == "" {
			fmt.Fprintln(os.Stderr, "BROKER_API_SECRET environment variable is required")
			os.Exit(1)
		}

		auth := middleware.NewAPIAuthenticator()
		token, err := auth.IssueToken(subject, ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringP("subject", "s", "broker-api", "Token subject")
	tokenCmd.Flags().DurationP("ttl", "t", 24*time.Hour, "Token lifetime")
}
