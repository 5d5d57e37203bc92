// Package main provides the entry point for DuoSim.
// DuoSim simulates two cores whose private data caches stay coherent by
// snooping each other.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "duosim",
	Short: "DuoSim simulates two snooping write-back data caches.",
	Long: `DuoSim simulates a two-core machine where each core owns a private ` +
		`direct-mapped write-back data cache. The caches keep main memory ` +
		`coherent by snooping each other, and every access reports its cycle cost.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
