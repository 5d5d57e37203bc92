package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/duosim/timing/latency"
)

var _ = Describe("CoherenceConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			config := latency.DefaultCoherenceConfig()
			Expect(config.Validate()).To(Succeed())
		})

		It("should use the protocol cycle costs", func() {
			config := latency.DefaultCoherenceConfig()
			Expect(config.HitLatency).To(Equal(uint64(1)))
			Expect(config.TransferLatency).To(Equal(uint64(2)))
			Expect(config.MemoryLatency).To(Equal(uint64(32)))
		})
	})

	Describe("Validation", func() {
		It("should reject zero hit latency", func() {
			config := latency.DefaultCoherenceConfig()
			config.HitLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero transfer latency", func() {
			config := latency.DefaultCoherenceConfig()
			config.TransferLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero memory latency", func() {
			config := latency.DefaultCoherenceConfig()
			config.MemoryLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := latency.DefaultCoherenceConfig()
			clone := original.Clone()

			clone.MemoryLatency = 100

			Expect(original.MemoryLatency).To(Equal(uint64(32)))
			Expect(clone.MemoryLatency).To(Equal(uint64(100)))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "latency-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := latency.DefaultCoherenceConfig()
			original.TransferLatency = 5
			original.MemoryLatency = 100

			path := filepath.Join(tempDir, "latency.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.HitLatency).To(Equal(uint64(1)))
			Expect(loaded.TransferLatency).To(Equal(uint64(5)))
			Expect(loaded.MemoryLatency).To(Equal(uint64(100)))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"memory_latency": 50}`), 0644)).
				To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.HitLatency).To(Equal(uint64(1)))
			Expect(loaded.TransferLatency).To(Equal(uint64(2)))
			Expect(loaded.MemoryLatency).To(Equal(uint64(50)))
		})

		It("should return error for non-existent file", func() {
			_, err := latency.LoadConfig("/nonexistent/path/latency.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			err := os.WriteFile(path, []byte("not valid json"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
