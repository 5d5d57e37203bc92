package main

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/sarchlab/duosim/emu"
	"github.com/sarchlab/duosim/loader"
	"github.com/sarchlab/duosim/timing/cache"
	"github.com/sarchlab/duosim/timing/core"
	"github.com/sarchlab/duosim/timing/latency"
	"github.com/sarchlab/duosim/tracing"
)

type runOptions struct {
	latency     *latency.CoherenceConfig
	dump        bool
	traceCSV    string
	verbose     bool
	transitions bool
	logOutput   io.Writer
}

var runCmd = &cobra.Command{
	Use:   "run <trace>",
	Short: "Run an access trace on both cores",
	Long: `Run an access trace on both cores. Each trace line is
"<core> <R|W> <address> [value]" with core 0/1 or A/B.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trace, err := loader.Load(args[0])
		if err != nil {
			return err
		}

		opts := runOptions{logOutput: cmd.ErrOrStderr()}
		opts.dump, _ = cmd.Flags().GetBool("dump")
		opts.traceCSV, _ = cmd.Flags().GetString("trace-csv")
		opts.verbose, _ = cmd.Flags().GetBool("verbose")
		opts.transitions, _ = cmd.Flags().GetBool("transitions")

		configPath, _ := cmd.Flags().GetString("config")
		opts.latency, err = loadLatency(configPath)
		if err != nil {
			return err
		}

		return runTrace(cmd.OutOrStdout(), trace, opts)
	},
}

func init() {
	runCmd.Flags().String("config", "", "Path to latency configuration JSON file")
	runCmd.Flags().Bool("dump", false, "Print both caches and memory after the run")
	runCmd.Flags().String("trace-csv", "", "Write every access to <path>.csv")
	runCmd.Flags().BoolP("verbose", "v", false, "Log every access")
	runCmd.Flags().Bool("transitions", false, "With -v, also log line state changes")
	rootCmd.AddCommand(runCmd)
}

func loadLatency(path string) (*latency.CoherenceConfig, error) {
	if path == "" {
		return latency.DefaultCoherenceConfig(), nil
	}

	config, err := latency.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid latency config: %w", err)
	}

	return config, nil
}

// runTrace issues every op of the trace in order and reports the value and
// cost of each, then the per-core totals. It stops at the first failing op.
func runTrace(out io.Writer, trace *loader.Trace, opts runOptions) error {
	memory := emu.NewMainMemory(emu.DefaultMemoryConfig())
	pair := cache.NewPair(memory, opts.latency)
	cores := core.NewCores(pair)

	if opts.verbose {
		logger := log.New(opts.logOutput, "", 0)
		pair.AcceptHook(tracing.NewLogHook(logger, opts.transitions))
	}

	if opts.traceCSV != "" {
		writer := tracing.NewCSVTraceWriter(opts.traceCSV)
		if err := writer.Init(); err != nil {
			return err
		}
		pair.AcceptHook(writer)
	}

	for _, op := range trace.Ops {
		c := cores[op.Core]

		switch op.Kind {
		case cache.AccessWrite:
			cycles, err := c.Store(op.Address, op.Value)
			if err != nil {
				return fmt.Errorf("line %d: %w", op.Line, err)
			}
			fmt.Fprintf(out, "%-16s cycles=%d\n", op, cycles)
		case cache.AccessRead:
			value, cycles, err := c.Load(op.Address)
			if err != nil {
				return fmt.Errorf("line %d: %w", op.Line, err)
			}
			fmt.Fprintf(out, "%-16s value=%d cycles=%d\n", op, value, cycles)
		}
	}

	fmt.Fprintf(out, "\n")
	for _, c := range cores {
		stats := c.Stats()
		fmt.Fprintf(out, "Core %s: %d loads, %d stores, %d cycles\n",
			c.ID(), stats.Loads, stats.Stores, stats.Cycles)
	}

	if opts.dump {
		return pair.Dump(out)
	}

	return nil
}
