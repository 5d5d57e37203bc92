package cache

import (
	"github.com/sarchlab/duosim/emu"
)

// BackingStore is the level below the data caches. Addresses are byte
// addresses; block operations act on the whole block containing addr.
type BackingStore interface {
	// CheckAddress returns an error if addr is outside the store.
	CheckAddress(addr uint64) error
	// ReadBlock fetches the block containing addr.
	ReadBlock(addr uint64) ([WordsPerBlock]int32, error)
	// WriteBlock stores the block containing addr.
	WriteBlock(addr uint64, words [WordsPerBlock]int32) error
}

// MemoryBacking wraps emu.MainMemory's data space as a BackingStore.
type MemoryBacking struct {
	memory *emu.MainMemory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.MainMemory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// CheckAddress validates addr against the data space.
func (m *MemoryBacking) CheckAddress(addr uint64) error {
	return m.memory.CheckDataAddress(addr)
}

// ReadBlock fetches a data block from the backing memory.
func (m *MemoryBacking) ReadBlock(addr uint64) ([WordsPerBlock]int32, error) {
	return m.memory.ReadDataBlock(addr)
}

// WriteBlock stores a data block to the backing memory.
func (m *MemoryBacking) WriteBlock(addr uint64, words [WordsPerBlock]int32) error {
	return m.memory.WriteDataBlock(addr, words)
}
