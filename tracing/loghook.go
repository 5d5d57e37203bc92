package tracing

import (
	"log"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/duosim/timing/cache"
)

// LogHook logs accesses and, optionally, line transitions.
type LogHook struct {
	sim.LogHookBase

	transitions bool
}

// NewLogHook creates a LogHook writing to logger. Transitions are logged
// only if withTransitions is set.
func NewLogHook(logger *log.Logger, withTransitions bool) *LogHook {
	h := &LogHook{transitions: withTransitions}
	h.Logger = logger

	return h
}

// Func writes one log line for the hook.
func (h *LogHook) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case cache.AccessRecord:
		r := item.Result
		h.Printf("%s %s %d value=%d cycles=%d hit=%t peer=%t writeback=%t",
			item.Cache, item.Kind, item.Address, r.Data, r.Latency,
			r.Hit, r.FromPeer, r.WroteBack)
	case cache.Transition:
		if !h.transitions {
			return
		}
		h.Printf("%s line %d block %d %s->%s",
			item.Cache, item.Line, item.Block, item.From, item.To)
	}
}
