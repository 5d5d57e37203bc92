package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
	"github.com/sarchlab/akita/v4/sim"
)

// HookPosAccess marks the completion of a read or write. The hook item is
// an AccessRecord.
var HookPosAccess = &sim.HookPos{Name: "DataCacheAccess"}

// HookPosTransition marks a line changing state or block. The hook item is
// a Transition.
var HookPosTransition = &sim.HookPos{Name: "DataCacheTransition"}

// AccessKind tells loads from stores.
type AccessKind int

// Access kinds.
const (
	AccessRead AccessKind = iota
	AccessWrite
)

func (k AccessKind) String() string {
	if k == AccessWrite {
		return "W"
	}
	return "R"
}

// AccessRecord describes one completed access.
type AccessRecord struct {
	Cache   string
	Kind    AccessKind
	Address uint64
	Result  AccessResult
}

// Transition describes a line changing state.
type Transition struct {
	Cache string
	Line  int
	Block uint64
	From  State
	To    State
}

func (c *DataCache) invokeAccessHook(kind AccessKind, addr uint64, result AccessResult) {
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosAccess,
		Item: AccessRecord{
			Cache:   c.name,
			Kind:    kind,
			Address: addr,
			Result:  result,
		},
	})
}

func (c *DataCache) invokeTransitionHook(block *akitacache.Block, from, to State) {
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosTransition,
		Item: Transition{
			Cache: c.name,
			Line:  LineIndexOf(BlockNumberOf(block.Tag)),
			Block: BlockNumberOf(block.Tag),
			From:  from,
			To:    to,
		},
	})
}
