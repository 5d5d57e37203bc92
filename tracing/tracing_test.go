package tracing_test

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/duosim/emu"
	"github.com/sarchlab/duosim/timing/cache"
	"github.com/sarchlab/duosim/timing/latency"
	"github.com/sarchlab/duosim/tracing"
)

var _ = Describe("Tracing", func() {
	var pair *cache.Pair

	BeforeEach(func() {
		memory := emu.NewMainMemory(emu.DefaultMemoryConfig())
		pair = cache.NewPair(memory, latency.DefaultCoherenceConfig())
	})

	Describe("CSVTraceWriter", func() {
		It("should write one row per access", func() {
			var buf bytes.Buffer
			writer := tracing.NewCSVTraceWriterTo(&buf)
			pair.AcceptHook(writer)

			_, err := pair.Write(cache.CoreA, 0, 42)
			Expect(err).NotTo(HaveOccurred())
			_, err = pair.Read(cache.CoreB, 0)
			Expect(err).NotTo(HaveOccurred())

			Expect(writer.Close()).To(Succeed())

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			Expect(lines).To(Equal([]string{
				"ID, Cache, Kind, Address, Value, Hit, FromPeer, WroteBack, Latency",
				"1, CoreA.DCache, W, 0, 42, false, false, false, 32",
				"2, CoreB.DCache, R, 0, 42, false, true, true, 34",
			}))
		})

		Context("with a file", func() {
			var tempDir string

			BeforeEach(func() {
				var err error
				tempDir, err = os.MkdirTemp("", "tracing-test")
				Expect(err).NotTo(HaveOccurred())
			})

			AfterEach(func() {
				_ = os.RemoveAll(tempDir)
			})

			It("should create the file and write on close", func() {
				writer := tracing.NewCSVTraceWriter(filepath.Join(tempDir, "run"))
				Expect(writer.Init()).To(Succeed())
				pair.AcceptHook(writer)

				_, err := pair.Read(cache.CoreA, 4)
				Expect(err).NotTo(HaveOccurred())
				Expect(writer.Close()).To(Succeed())

				data, err := os.ReadFile(filepath.Join(tempDir, "run.csv"))
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(ContainSubstring("1, CoreA.DCache, R, 4, 1"))
			})

			It("should refuse to overwrite an existing file", func() {
				path := filepath.Join(tempDir, "run")
				Expect(os.WriteFile(path+".csv", nil, 0644)).To(Succeed())

				writer := tracing.NewCSVTraceWriter(path)
				Expect(writer.Init()).NotTo(Succeed())
			})
		})
	})

	Describe("LogHook", func() {
		It("should log accesses", func() {
			var buf bytes.Buffer
			pair.AcceptHook(tracing.NewLogHook(log.New(&buf, "", 0), false))

			_, err := pair.Write(cache.CoreA, 0, 42)
			Expect(err).NotTo(HaveOccurred())

			Expect(buf.String()).To(Equal(
				"CoreA.DCache W 0 value=42 cycles=32 hit=false peer=false writeback=false\n"))
		})

		It("should log transitions when asked", func() {
			var buf bytes.Buffer
			pair.AcceptHook(tracing.NewLogHook(log.New(&buf, "", 0), true))

			_, err := pair.Write(cache.CoreA, 0, 42)
			Expect(err).NotTo(HaveOccurred())

			Expect(buf.String()).To(ContainSubstring("CoreA.DCache line 0 block 0 I->C\n"))
			Expect(buf.String()).To(ContainSubstring("CoreA.DCache line 0 block 0 C->M\n"))
		})

		It("should log the evicted block before the new one", func() {
			var buf bytes.Buffer
			_, err := pair.Read(cache.CoreA, 0)
			Expect(err).NotTo(HaveOccurred())
			pair.AcceptHook(tracing.NewLogHook(log.New(&buf, "", 0), true))

			_, err = pair.Read(cache.CoreA, 128)
			Expect(err).NotTo(HaveOccurred())

			Expect(buf.String()).To(HavePrefix(
				"CoreA.DCache line 0 block 0 C->I\n" +
					"CoreA.DCache line 0 block 8 I->C\n"))
		})
	})
})
