package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/duosim/timing/latency"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the default latency configuration as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(latency.DefaultCoherenceConfig(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize latency config: %w", err)
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
