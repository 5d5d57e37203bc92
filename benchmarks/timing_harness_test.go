package benchmarks_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/duosim/benchmarks"
	"github.com/sarchlab/duosim/emu"
	"github.com/sarchlab/duosim/loader"
	"github.com/sarchlab/duosim/timing/cache"
)

var _ = Describe("Timing Harness", func() {
	var (
		buf     *bytes.Buffer
		harness *benchmarks.Harness
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		config := benchmarks.DefaultConfig()
		config.Output = buf
		harness = benchmarks.NewHarness(config)
	})

	resultFor := func(name string) benchmarks.BenchmarkResult {
		for _, b := range benchmarks.GetMicrobenchmarks() {
			if b.Name == name {
				harness.AddBenchmark(b)
				results := harness.RunAll()
				Expect(results).To(HaveLen(1))
				Expect(results[0].Err).NotTo(HaveOccurred())
				return results[0]
			}
		}
		Fail("no benchmark named " + name)
		return benchmarks.BenchmarkResult{}
	}

	DescribeTable("microbenchmark cycle counts",
		func(name string, coreA, coreB uint64) {
			r := resultFor(name)
			Expect(r.CoreCycles[cache.CoreA]).To(Equal(coreA))
			Expect(r.CoreCycles[cache.CoreB]).To(Equal(coreB))
			Expect(r.TotalCycles).To(Equal(coreA + coreB))
		},
		Entry("private streaming", "private_streaming", uint64(264), uint64(264)),
		Entry("producer/consumer", "producer_consumer", uint64(35), uint64(136)),
		Entry("write contention", "write_contention", uint64(134), uint64(136)),
		Entry("conflict eviction", "conflict_eviction", uint64(224), uint64(0)),
		Entry("read sharing", "read_sharing", uint64(264), uint64(24)),
	)

	It("should count protocol events", func() {
		r := resultFor("write_contention")
		Expect(r.Accesses).To(Equal(uint64(8)))
		Expect(r.Writebacks).To(Equal(uint64(7)))
		Expect(r.PeerTransfers).To(Equal(uint64(7)))
		Expect(r.Invalidations).To(Equal(uint64(7)))
		Expect(r.MemoryFetches).To(Equal(uint64(1)))
	})

	It("should stop at the first failing access", func() {
		harness.AddBenchmark(benchmarks.Benchmark{
			Name: "out_of_range",
			Ops: []loader.Op{
				{Core: cache.CoreA, Kind: cache.AccessRead, Address: 0},
				{Core: cache.CoreA, Kind: cache.AccessRead, Address: 4096},
				{Core: cache.CoreA, Kind: cache.AccessRead, Address: 4},
			},
		})

		results := harness.RunAll()
		Expect(errors.Is(results[0].Err, emu.ErrAddressOutOfRange)).To(BeTrue())
		Expect(results[0].Accesses).To(Equal(uint64(1)))
	})

	It("should print human-readable results", func() {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
		harness.PrintResults(harness.RunAll())

		Expect(buf.String()).To(ContainSubstring("Benchmark: producer_consumer"))
		Expect(buf.String()).To(ContainSubstring("Core B Cycles:  136"))
	})

	It("should print CSV results", func() {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
		harness.PrintCSV(harness.RunAll())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(6))
		Expect(lines[0]).To(HavePrefix("name,core_a_cycles"))
		Expect(lines[4]).To(Equal("conflict_eviction,224,0,224,4,0,4,3,0,4,0"))
	})

	It("should print a JSON report", func() {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
		Expect(harness.PrintJSON(harness.RunAll())).To(Succeed())

		var report benchmarks.BenchmarkReport
		Expect(json.Unmarshal(buf.Bytes(), &report)).To(Succeed())

		Expect(report.Metadata.Timestamp).NotTo(BeEmpty())
		Expect(report.Metadata.Latency.MemoryLatency).To(Equal(uint64(32)))
		Expect(report.Results).To(HaveLen(5))
		Expect(report.Results[1].Name).To(Equal("producer_consumer"))
		Expect(report.Results[1].CoreCycles).To(Equal([2]uint64{35, 136}))
		Expect(report.Summary.TotalBenchmarks).To(Equal(5))
		Expect(report.Summary.Failed).To(Equal(0))
		Expect(report.Summary.TotalCycles).To(Equal(uint64(1481)))
		Expect(buf.String()).To(ContainSubstring(`"peer_transfers"`))
	})
})
