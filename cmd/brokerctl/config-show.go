package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zkmarket/broker/pkg/config"
)

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show broker configuration attributes and their sources",
	Long: `Show broker configuration attributes and their sources.

The values displayed by this command reflect the current state of the
configuration sources: the environment variables and the config file.
They may not reflect the values used by a broker that was started before
the sources changed.

Config file location: /etc/broker/broker.yml (or BROKER_CONFIG_PATH)

Example:
  brokerctl config show
  brokerctl config show --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		if err := showConfiguration(output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showConfiguration(output string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if output == "json" {
		jsonOutput, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Println(jsonOutput)
		return nil
	}

	fmt.Print(cfg.FormatText())
	return nil
}
