// Package cache models the private direct-mapped write-back data caches of
// the two cores and the snooping protocol that keeps them coherent.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/duosim/emu"
	"github.com/sarchlab/duosim/timing/latency"
)

const (
	// LineCount is the number of lines in each data cache.
	LineCount = 8
	// WordsPerBlock is the number of words in a block.
	WordsPerBlock = emu.DataBlockWords
	// BlockSize is the block size in bytes.
	BlockSize = emu.DataBlockBytes
)

// BlockNumberOf returns the number of the block that holds addr.
func BlockNumberOf(addr uint64) uint64 {
	return addr / BlockSize
}

// WordIndexOf returns the position of addr's word inside its block.
func WordIndexOf(addr uint64) int {
	return int(addr%BlockSize) / emu.WordBytes
}

// LineIndexOf returns the only line that may hold the given block.
func LineIndexOf(blockNumber uint64) int {
	return int(blockNumber % LineCount)
}

// BlockAddressOf returns the first byte address of a block.
func BlockAddressOf(blockNumber uint64) uint64 {
	return blockNumber * BlockSize
}

// State is the coherence state of a line.
type State int

// Line states.
const (
	Invalid State = iota
	Clean
	Modified
)

func (s State) String() string {
	switch s {
	case Invalid:
		return "I"
	case Clean:
		return "C"
	case Modified:
		return "M"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Line is a snapshot of one cache slot. Tag is meaningful only when State
// is not Invalid.
type Line struct {
	Index int
	Tag   uint64
	State State
	Words [WordsPerBlock]int32
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the block was resident before the access.
	Hit bool
	// Latency is the number of cycles this access takes.
	Latency uint64
	// Data is the word read, or the word written.
	Data int32
	// WroteBack is true if a dirty block was written to memory, either
	// by eviction or by the peer giving up ownership.
	WroteBack bool
	// FromPeer is true if the block was supplied by the peer cache.
	FromPeer bool
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads         uint64
	Writes        uint64
	Hits          uint64
	Misses        uint64
	Writebacks    uint64
	PeerTransfers uint64
	MemoryFetches uint64
	Invalidations uint64
	Cycles        uint64
}

// BlockTransfer is a block handed from one cache to the other.
type BlockTransfer struct {
	Words [WordsPerBlock]int32
	// WroteBack is true if the sender held the block Modified and wrote it
	// to memory before sending.
	WroteBack bool
}

// Peer is the view a data cache has of the other data cache while
// resolving an access.
type Peer interface {
	// IsResident reports whether the peer holds the block.
	IsResident(blockNumber uint64) bool
	// SendBlock returns the peer's copy of a resident block, writing it
	// back and demoting it to Clean first if it is Modified.
	SendBlock(blockNumber uint64) (BlockTransfer, error)
	// Invalidate drops the block from the peer if it is resident.
	Invalidate(blockNumber uint64)
}

// DataCache is a direct-mapped write-back data cache. It holds no reference
// to its peer; the peer is passed in on every access.
type DataCache struct {
	*sim.HookableBase

	name    string
	config  *latency.CoherenceConfig
	backing BackingStore

	// Akita directory for tag/state management only: LineCount sets of one
	// way, so victim selection never happens and the LRU finder is unused.
	directory *akitacache.DirectoryImpl

	// Data storage, indexed by line.
	dataStore [LineCount][WordsPerBlock]int32

	stats Statistics
}

// New creates a data cache with every line Invalid.
func New(
	name string,
	config *latency.CoherenceConfig,
	backing BackingStore,
) *DataCache {
	return &DataCache{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		config:       config,
		backing:      backing,
		directory: akitacache.NewDirectory(
			LineCount,
			1,
			BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Name returns the cache name.
func (c *DataCache) Name() string {
	return c.name
}

// Stats returns cache statistics.
func (c *DataCache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *DataCache) ResetStats() {
	c.stats = Statistics{}
}

// Line returns a snapshot of the line at index i.
func (c *DataCache) Line(i int) Line {
	block := c.directory.GetSets()[i].Blocks[0]

	return Line{
		Index: i,
		Tag:   BlockNumberOf(block.Tag),
		State: stateOf(block),
		Words: c.dataStore[i],
	}
}

// IsResident reports whether the block is held in a valid state.
func (c *DataCache) IsResident(blockNumber uint64) bool {
	return c.directory.Lookup(0, BlockAddressOf(blockNumber)) != nil
}

// Read returns the word at addr. On a miss the block is filled first.
func (c *DataCache) Read(peer Peer, addr uint64) (AccessResult, error) {
	if err := c.backing.CheckAddress(addr); err != nil {
		return AccessResult{}, err
	}

	c.stats.Reads++

	result, err := c.ensureResident(peer, BlockNumberOf(addr))
	if err != nil {
		return AccessResult{}, err
	}

	result.Data = c.dataStore[LineIndexOf(BlockNumberOf(addr))][WordIndexOf(addr)]
	c.stats.Cycles += result.Latency
	c.invokeAccessHook(AccessRead, addr, result)

	return result, nil
}

// Write stores value at addr and leaves the line Modified. The peer's copy
// of the block, if any, is invalidated so that this cache is the only
// holder of the modified block.
func (c *DataCache) Write(peer Peer, addr uint64, value int32) (AccessResult, error) {
	if err := c.backing.CheckAddress(addr); err != nil {
		return AccessResult{}, err
	}

	c.stats.Writes++

	blockNumber := BlockNumberOf(addr)
	result, err := c.ensureResident(peer, blockNumber)
	if err != nil {
		return AccessResult{}, err
	}

	if peer != nil && peer.IsResident(blockNumber) {
		peer.Invalidate(blockNumber)
	}

	block := c.lineBlock(blockNumber)
	c.dataStore[LineIndexOf(blockNumber)][WordIndexOf(addr)] = value
	c.setState(block, Modified)

	result.Data = value
	c.stats.Cycles += result.Latency
	c.invokeAccessHook(AccessWrite, addr, result)

	return result, nil
}

// Fill brings the block holding addr into its line and returns the cycles
// spent. It does not check whether the block is already resident.
func (c *DataCache) Fill(peer Peer, addr uint64) (uint64, error) {
	if err := c.backing.CheckAddress(addr); err != nil {
		return 0, err
	}

	result, err := c.fill(peer, BlockNumberOf(addr))
	if err != nil {
		return 0, err
	}

	return result.Latency, nil
}

func (c *DataCache) ensureResident(
	peer Peer,
	blockNumber uint64,
) (AccessResult, error) {
	if c.IsResident(blockNumber) {
		c.stats.Hits++

		return AccessResult{Hit: true, Latency: c.config.HitLatency}, nil
	}

	c.stats.Misses++

	return c.fill(peer, blockNumber)
}

// fill evicts the line's current block (writing it back if Modified), then
// fetches the block from the peer if it holds it, or from memory. The old
// block is reported leaving (to Invalid) before the new one arrives.
func (c *DataCache) fill(peer Peer, blockNumber uint64) (AccessResult, error) {
	result := AccessResult{}
	block := c.lineBlock(blockNumber)
	line := LineIndexOf(blockNumber)

	switch stateOf(block) {
	case Modified:
		if err := c.backing.WriteBlock(block.Tag, c.dataStore[line]); err != nil {
			return result, fmt.Errorf("%s: failed to evict block %d: %w",
				c.name, BlockNumberOf(block.Tag), err)
		}

		c.stats.Writebacks++
		result.Latency += c.config.MemoryLatency
		result.WroteBack = true
		c.setState(block, Invalid)
	case Clean:
		c.setState(block, Invalid)
	case Invalid:
		// Empty line, nothing to evict.
	}

	var words [WordsPerBlock]int32
	if peer != nil && peer.IsResident(blockNumber) {
		transfer, err := peer.SendBlock(blockNumber)
		if err != nil {
			return result, fmt.Errorf("%s: failed to fetch block %d from peer: %w",
				c.name, blockNumber, err)
		}

		words = transfer.Words
		c.stats.PeerTransfers++
		result.Latency += c.config.TransferLatency
		result.FromPeer = true

		if transfer.WroteBack {
			result.Latency += c.config.MemoryLatency
			result.WroteBack = true
		}
	} else {
		var err error
		words, err = c.backing.ReadBlock(BlockAddressOf(blockNumber))
		if err != nil {
			return result, fmt.Errorf("%s: failed to fetch block %d: %w",
				c.name, blockNumber, err)
		}

		c.stats.MemoryFetches++
		result.Latency += c.config.MemoryLatency
	}

	c.dataStore[line] = words
	block.Tag = BlockAddressOf(blockNumber)
	c.setState(block, Clean)

	return result, nil
}

// SendBlock hands a resident block to the peer. A Modified block is written
// back and demoted to Clean first, so that both caches can share it.
func (c *DataCache) SendBlock(blockNumber uint64) (BlockTransfer, error) {
	block := c.directory.Lookup(0, BlockAddressOf(blockNumber))
	if block == nil {
		return BlockTransfer{}, fmt.Errorf("%s: block %d is not resident",
			c.name, blockNumber)
	}

	line := LineIndexOf(blockNumber)
	transfer := BlockTransfer{}

	switch stateOf(block) {
	case Modified:
		if err := c.backing.WriteBlock(block.Tag, c.dataStore[line]); err != nil {
			return BlockTransfer{}, fmt.Errorf(
				"%s: failed to write back block %d: %w", c.name, blockNumber, err)
		}

		c.stats.Writebacks++
		c.setState(block, Clean)
		transfer.WroteBack = true
	case Clean, Invalid:
		// Memory is already up to date, nothing to write back.
	}

	transfer.Words = c.dataStore[line]

	return transfer, nil
}

// Invalidate drops the block if it is resident. It is a no-op otherwise.
func (c *DataCache) Invalidate(blockNumber uint64) {
	block := c.directory.Lookup(0, BlockAddressOf(blockNumber))
	if block == nil {
		return
	}

	c.stats.Invalidations++
	c.setState(block, Invalid)
}

// Flush writes back every Modified line and demotes it to Clean.
func (c *DataCache) Flush() error {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if stateOf(block) != Modified {
				continue
			}

			line := LineIndexOf(BlockNumberOf(block.Tag))
			if err := c.backing.WriteBlock(block.Tag, c.dataStore[line]); err != nil {
				return fmt.Errorf("%s: failed to flush block %d: %w",
					c.name, BlockNumberOf(block.Tag), err)
			}

			c.stats.Writebacks++
			c.setState(block, Clean)
		}
	}

	return nil
}

// Reset invalidates all cache lines without writeback.
func (c *DataCache) Reset() {
	c.directory.Reset()
	c.dataStore = [LineCount][WordsPerBlock]int32{}
	c.stats = Statistics{}
}

// lineBlock returns the directory entry of the line the block maps to.
func (c *DataCache) lineBlock(blockNumber uint64) *akitacache.Block {
	return c.directory.GetSets()[LineIndexOf(blockNumber)].Blocks[0]
}

func stateOf(block *akitacache.Block) State {
	switch {
	case !block.IsValid:
		return Invalid
	case block.IsDirty:
		return Modified
	default:
		return Clean
	}
}

func (c *DataCache) setState(block *akitacache.Block, to State) {
	from := stateOf(block)
	if from == to {
		return
	}

	switch to {
	case Invalid:
		block.IsValid = false
		block.IsDirty = false
	case Clean:
		block.IsValid = true
		block.IsDirty = false
	case Modified:
		block.IsValid = true
		block.IsDirty = true
	}

	c.invokeTransitionHook(block, from, to)
}
