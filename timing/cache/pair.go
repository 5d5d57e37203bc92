package cache

import (
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/duosim/emu"
	"github.com/sarchlab/duosim/timing/latency"
)

// CoreID selects one of the two cores.
type CoreID int

// The two cores.
const (
	CoreA CoreID = iota
	CoreB
)

// NumCores is the number of cores sharing main memory.
const NumCores = 2

func (id CoreID) String() string {
	switch id {
	case CoreA:
		return "A"
	case CoreB:
		return "B"
	default:
		return fmt.Sprintf("Core(%d)", int(id))
	}
}

// Pair owns the shared main memory and both data caches. Every access goes
// through the pair, which hands the accessing cache its peer.
type Pair struct {
	memory *emu.MainMemory
	caches [NumCores]*DataCache
}

// NewPair creates two empty data caches over the given memory.
func NewPair(memory *emu.MainMemory, config *latency.CoherenceConfig) *Pair {
	p := &Pair{memory: memory}
	backing := NewMemoryBacking(memory)

	for i := range p.caches {
		p.caches[i] = New(fmt.Sprintf("Core%s.DCache", CoreID(i)), config, backing)
	}

	return p
}

// Memory returns the shared main memory.
func (p *Pair) Memory() *emu.MainMemory {
	return p.memory
}

// Cache returns the data cache of a core.
func (p *Pair) Cache(core CoreID) *DataCache {
	return p.caches[core]
}

// Read performs a load from the given core.
func (p *Pair) Read(core CoreID, addr uint64) (AccessResult, error) {
	self, peer, err := p.route(core)
	if err != nil {
		return AccessResult{}, err
	}

	return self.Read(peer, addr)
}

// Write performs a store from the given core.
func (p *Pair) Write(core CoreID, addr uint64, value int32) (AccessResult, error) {
	self, peer, err := p.route(core)
	if err != nil {
		return AccessResult{}, err
	}

	return self.Write(peer, addr, value)
}

// Fill loads the block holding addr into the given core's cache.
func (p *Pair) Fill(core CoreID, addr uint64) (uint64, error) {
	self, peer, err := p.route(core)
	if err != nil {
		return 0, err
	}

	return self.Fill(peer, addr)
}

func (p *Pair) route(core CoreID) (self, peer *DataCache, err error) {
	switch core {
	case CoreA:
		return p.caches[CoreA], p.caches[CoreB], nil
	case CoreB:
		return p.caches[CoreB], p.caches[CoreA], nil
	default:
		return nil, nil, fmt.Errorf("unknown core %d", int(core))
	}
}

// AcceptHook registers a hook on both caches.
func (p *Pair) AcceptHook(hook sim.Hook) {
	for _, c := range p.caches {
		c.AcceptHook(hook)
	}
}

// Flush writes every Modified line of both caches back to memory.
func (p *Pair) Flush() error {
	for _, c := range p.caches {
		if err := c.Flush(); err != nil {
			return err
		}
	}

	return nil
}

// CheckInvariants verifies the coherence invariants over both caches: a
// resident block sits in the line its number maps to, and a Modified block
// is held by no other cache.
func (p *Pair) CheckInvariants() error {
	for core, c := range p.caches {
		peer := p.caches[NumCores-1-core]

		for i := 0; i < LineCount; i++ {
			line := c.Line(i)

			switch line.State {
			case Invalid:
				continue
			case Clean:
			case Modified:
				if peer.IsResident(line.Tag) {
					return fmt.Errorf(
						"block %d is Modified in %s and also held by %s",
						line.Tag, c.Name(), peer.Name())
				}
			}

			if LineIndexOf(line.Tag) != i {
				return fmt.Errorf("block %d found in line %d of %s, expected line %d",
					line.Tag, i, c.Name(), LineIndexOf(line.Tag))
			}
		}
	}

	return nil
}

// Dump writes both caches followed by main memory.
func (p *Pair) Dump(w io.Writer) error {
	for _, c := range p.caches {
		if err := c.Dump(w); err != nil {
			return err
		}
	}

	return p.memory.Dump(w)
}
