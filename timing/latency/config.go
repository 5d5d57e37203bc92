// Package latency provides the cycle-cost model of the coherence protocol.
package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// CoherenceConfig holds the cycle cost of each step a data access can take.
// Costs of the steps taken by one access add up.
type CoherenceConfig struct {
	// HitLatency is the cost of an access served by the local cache.
	// Default: 1 cycle.
	HitLatency uint64 `json:"hit_latency"`

	// TransferLatency is the cost of pulling a block from the peer cache.
	// Default: 2 cycles.
	TransferLatency uint64 `json:"transfer_latency"`

	// MemoryLatency is the cost of reading or writing one block in main
	// memory. Default: 32 cycles.
	MemoryLatency uint64 `json:"memory_latency"`
}

// DefaultCoherenceConfig returns the protocol's standard cycle costs.
func DefaultCoherenceConfig() *CoherenceConfig {
	return &CoherenceConfig{
		HitLatency:      1,
		TransferLatency: 2,
		MemoryLatency:   32,
	}
}

// LoadConfig loads a CoherenceConfig from a JSON file. Fields missing from
// the file keep their default values.
func LoadConfig(path string) (*CoherenceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read latency config file: %w", err)
	}

	config := DefaultCoherenceConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse latency config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a CoherenceConfig to a JSON file.
func (c *CoherenceConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize latency config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write latency config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are valid (> 0).
func (c *CoherenceConfig) Validate() error {
	if c.HitLatency == 0 {
		return fmt.Errorf("hit_latency must be > 0")
	}
	if c.TransferLatency == 0 {
		return fmt.Errorf("transfer_latency must be > 0")
	}
	if c.MemoryLatency == 0 {
		return fmt.Errorf("memory_latency must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the CoherenceConfig.
func (c *CoherenceConfig) Clone() *CoherenceConfig {
	return &CoherenceConfig{
		HitLatency:      c.HitLatency,
		TransferLatency: c.TransferLatency,
		MemoryLatency:   c.MemoryLatency,
	}
}
