// Package benchmarks provides sharing-pattern benchmarks that exercise the
// coherence protocol and report the cycles each pattern costs.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/duosim/emu"
	"github.com/sarchlab/duosim/loader"
	"github.com/sarchlab/duosim/timing/cache"
	"github.com/sarchlab/duosim/timing/core"
	"github.com/sarchlab/duosim/timing/latency"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// CoreCycles is the cycle count of each core
	CoreCycles [cache.NumCores]uint64 `json:"core_cycles"`

	// TotalCycles is the sum over both cores
	TotalCycles uint64 `json:"total_cycles"`

	// Accesses is the number of completed loads and stores
	Accesses uint64 `json:"accesses"`

	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Writebacks    uint64 `json:"writebacks"`
	PeerTransfers uint64 `json:"peer_transfers"`
	MemoryFetches uint64 `json:"memory_fetches"`
	Invalidations uint64 `json:"invalidations"`

	// Err is set if an access failed; counts cover the accesses before it
	Err error `json:"-"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single access pattern.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Ops is the access sequence, issued in order
	Ops []loader.Op
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Latency is the cost model (default: latency.DefaultCoherenceConfig)
	Latency *latency.CoherenceConfig

	// Memory is the memory layout (default: emu.DefaultMemoryConfig)
	Memory emu.MemoryConfig

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Latency: latency.DefaultCoherenceConfig(),
		Memory:  emu.DefaultMemoryConfig(),
		Output:  os.Stdout,
		Verbose: false,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Latency == nil {
		config.Latency = latency.DefaultCoherenceConfig()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll runs every benchmark on a fresh machine.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	memory := emu.NewMainMemory(h.config.Memory)
	pair := cache.NewPair(memory, h.config.Latency)
	cores := core.NewCores(pair)

	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	start := time.Now()
	for _, op := range bench.Ops {
		if err := issue(cores[op.Core], op); err != nil {
			result.Err = err
			break
		}
	}
	result.WallTime = time.Since(start)

	for i, c := range cores {
		stats := c.Stats()
		result.CoreCycles[i] = stats.Cycles
		result.TotalCycles += stats.Cycles
		result.Accesses += stats.Loads + stats.Stores

		cs := c.Cache().Stats()
		result.Hits += cs.Hits
		result.Misses += cs.Misses
		result.Writebacks += cs.Writebacks
		result.PeerTransfers += cs.PeerTransfers
		result.MemoryFetches += cs.MemoryFetches
		result.Invalidations += cs.Invalidations
	}

	return result
}

func issue(c *core.Core, op loader.Op) error {
	if op.Kind == cache.AccessWrite {
		_, err := c.Store(op.Address, op.Value)
		return err
	}

	_, _, err := c.Load(op.Address)
	return err
}

// PrintResults outputs benchmark results in human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== DuoSim Coherence Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		if r.Err != nil {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %v\n", r.Err)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Core A Cycles:  %d\n", r.CoreCycles[cache.CoreA])
		_, _ = fmt.Fprintf(h.config.Output, "  Core B Cycles:  %d\n", r.CoreCycles[cache.CoreB])
		_, _ = fmt.Fprintf(h.config.Output, "  Total Cycles:   %d\n", r.TotalCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Accesses:       %d\n", r.Accesses)
		_, _ = fmt.Fprintln(h.config.Output, "  --- D-Cache ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Hits:           %d\n", r.Hits)
		_, _ = fmt.Fprintf(h.config.Output, "  Misses:         %d\n", r.Misses)
		_, _ = fmt.Fprintf(h.config.Output, "  Writebacks:     %d\n", r.Writebacks)
		_, _ = fmt.Fprintf(h.config.Output, "  Peer Transfers: %d\n", r.PeerTransfers)
		_, _ = fmt.Fprintf(h.config.Output, "  Memory Fetches: %d\n", r.MemoryFetches)
		_, _ = fmt.Fprintf(h.config.Output, "  Invalidations:  %d\n", r.Invalidations)

		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		}
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,core_a_cycles,core_b_cycles,total_cycles,accesses,hits,misses,writebacks,peer_transfers,memory_fetches,invalidations")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.CoreCycles[cache.CoreA],
			r.CoreCycles[cache.CoreB],
			r.TotalCycles,
			r.Accesses,
			r.Hits,
			r.Misses,
			r.Writebacks,
			r.PeerTransfers,
			r.MemoryFetches,
			r.Invalidations,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Latency is the cost model the benchmarks ran with
	Latency latency.CoherenceConfig `json:"latency"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// Failed is the number of benchmarks stopped by an access error
	Failed int `json:"failed"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalAccesses is the sum of all completed accesses
	TotalAccesses uint64 `json:"total_accesses"`

	// AverageCyclesPerAccess is TotalCycles over TotalAccesses
	AverageCyclesPerAccess float64 `json:"average_cycles_per_access"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalCycles += r.TotalCycles
		summary.TotalAccesses += r.Accesses
		summary.TotalWallTime += r.WallTime
		if r.Err != nil {
			summary.Failed++
		}
	}

	if summary.TotalAccesses > 0 {
		summary.AverageCyclesPerAccess =
			float64(summary.TotalCycles) / float64(summary.TotalAccesses)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Latency:   *h.config.Latency,
		},
		Results: results,
		Summary: summary,
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
