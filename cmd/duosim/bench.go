package main

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/duosim/benchmarks"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the sharing-pattern microbenchmarks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		csvOutput, _ := cmd.Flags().GetBool("csv")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		configPath, _ := cmd.Flags().GetString("config")

		config := benchmarks.DefaultConfig()
		config.Output = cmd.OutOrStdout()

		var err error
		config.Latency, err = loadLatency(configPath)
		if err != nil {
			return err
		}

		harness := benchmarks.NewHarness(config)
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
		results := harness.RunAll()

		switch {
		case jsonOutput:
			return harness.PrintJSON(results)
		case csvOutput:
			harness.PrintCSV(results)
		default:
			harness.PrintResults(results)
		}

		return nil
	},
}

func init() {
	benchCmd.Flags().Bool("csv", false, "Output results in CSV format")
	benchCmd.Flags().Bool("json", false, "Output results in JSON format")
	benchCmd.Flags().String("config", "", "Path to latency configuration JSON file")
	rootCmd.AddCommand(benchCmd)
}
