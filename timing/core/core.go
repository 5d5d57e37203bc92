// Package core provides the driver-facing model of one core's data path.
// It wraps the core's data cache to provide a load/store interface that
// accumulates the cycles each access costs.
package core

import (
	"fmt"

	"github.com/sarchlab/duosim/timing/cache"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles spent on data accesses.
	Cycles uint64
	// Loads is the number of completed loads.
	Loads uint64
	// Stores is the number of completed stores.
	Stores uint64
}

// Core issues loads and stores to its data cache through the shared pair.
type Core struct {
	id    cache.CoreID
	pair  *cache.Pair
	stats Stats
}

// NewCore creates the core with the given ID over a cache pair.
func NewCore(id cache.CoreID, pair *cache.Pair) *Core {
	return &Core{
		id:   id,
		pair: pair,
	}
}

// NewCores creates both cores of a pair.
func NewCores(pair *cache.Pair) [cache.NumCores]*Core {
	return [cache.NumCores]*Core{
		NewCore(cache.CoreA, pair),
		NewCore(cache.CoreB, pair),
	}
}

// ID returns the core's ID.
func (c *Core) ID() cache.CoreID {
	return c.id
}

// Cache returns the core's data cache.
func (c *Core) Cache() *cache.DataCache {
	return c.pair.Cache(c.id)
}

// Load reads the word at addr and returns it with the cycles spent.
func (c *Core) Load(addr uint64) (int32, uint64, error) {
	result, err := c.pair.Read(c.id, addr)
	if err != nil {
		return 0, 0, fmt.Errorf("core %s: load %d: %w", c.id, addr, err)
	}

	c.stats.Loads++
	c.stats.Cycles += result.Latency

	return result.Data, result.Latency, nil
}

// Store writes value at addr and returns the cycles spent.
func (c *Core) Store(addr uint64, value int32) (uint64, error) {
	result, err := c.pair.Write(c.id, addr, value)
	if err != nil {
		return 0, fmt.Errorf("core %s: store %d: %w", c.id, addr, err)
	}

	c.stats.Stores++
	c.stats.Cycles += result.Latency

	return result.Latency, nil
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return c.stats
}

// ResetStats clears the core's statistics.
func (c *Core) ResetStats() {
	c.stats = Stats{}
}
