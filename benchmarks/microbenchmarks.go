package benchmarks

import (
	"github.com/sarchlab/duosim/loader"
	"github.com/sarchlab/duosim/timing/cache"
)

// GetMicrobenchmarks returns the standard set of sharing-pattern
// microbenchmarks. Each one targets a specific path of the protocol.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		privateStreaming(),
		producerConsumer(),
		writeContention(),
		conflictEviction(),
		readSharing(),
	}
}

func read(core cache.CoreID, addr uint64) loader.Op {
	return loader.Op{Core: core, Kind: cache.AccessRead, Address: addr}
}

func write(core cache.CoreID, addr uint64, value int32) loader.Op {
	return loader.Op{Core: core, Kind: cache.AccessWrite, Address: addr, Value: value}
}

// 1. Private Streaming - each core walks its own blocks twice
func privateStreaming() Benchmark {
	ops := []loader.Op{}
	for pass := 0; pass < 2; pass++ {
		for b := uint64(0); b < cache.LineCount; b++ {
			ops = append(ops,
				read(cache.CoreA, cache.BlockAddressOf(b)),
				read(cache.CoreB, cache.BlockAddressOf(b+cache.LineCount)),
			)
		}
	}

	return Benchmark{
		Name:        "private_streaming",
		Description: "Disjoint working sets - measures cold misses then pure hits",
		Ops:         ops,
	}
}

// 2. Producer/Consumer - A writes a word, B reads it back
func producerConsumer() Benchmark {
	ops := []loader.Op{}
	for i := int32(1); i <= 4; i++ {
		ops = append(ops,
			write(cache.CoreA, 0, i),
			read(cache.CoreB, 0),
		)
	}

	return Benchmark{
		Name:        "producer_consumer",
		Description: "One writer, one reader on a block - measures dirty transfers",
		Ops:         ops,
	}
}

// 3. Write Contention - both cores write the same block in turn
func writeContention() Benchmark {
	ops := []loader.Op{}
	for i := int32(0); i < 8; i++ {
		core := cache.CoreID(i % 2)
		ops = append(ops, write(core, uint64(i%4)*4, i))
	}

	return Benchmark{
		Name:        "write_contention",
		Description: "Alternating writers on a block - measures ownership migration",
		Ops:         ops,
	}
}

// 4. Conflict Eviction - dirty blocks that share a line index
func conflictEviction() Benchmark {
	return Benchmark{
		Name:        "conflict_eviction",
		Description: "Dirty blocks 0, 8, 16 in line 0 - measures write-back on eviction",
		Ops: []loader.Op{
			write(cache.CoreA, 0, 1),
			write(cache.CoreA, 128, 2),
			write(cache.CoreA, 256, 3),
			read(cache.CoreA, 0),
		},
	}
}

// 5. Read Sharing - both cores read the same blocks
func readSharing() Benchmark {
	ops := []loader.Op{}
	for b := uint64(0); b < cache.LineCount; b++ {
		ops = append(ops, read(cache.CoreA, cache.BlockAddressOf(b)))
	}
	for b := uint64(0); b < cache.LineCount; b++ {
		ops = append(ops, read(cache.CoreB, cache.BlockAddressOf(b)))
	}
	for b := uint64(0); b < cache.LineCount; b++ {
		ops = append(ops,
			read(cache.CoreA, cache.BlockAddressOf(b)+4),
			read(cache.CoreB, cache.BlockAddressOf(b)+8),
		)
	}

	return Benchmark{
		Name:        "read_sharing",
		Description: "Shared read-only blocks - measures clean peer transfers",
		Ops:         ops,
	}
}
