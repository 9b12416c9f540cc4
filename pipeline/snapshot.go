package pipeline

import "github.com/Jecci-cmd/y86pipe/isa"

// Snapshot is the architectural state recorded at the retirement of one
// non-bubble instruction. CC is the value supplied by
// write-back's own latch, not the live global condition codes — this is
// what makes a snapshot correspond to sequential semantics rather than
// in-flight pipelined state.
type Snapshot struct {
	PC       uint64
	Reg      [isa.NumRegs]int64
	MemWords map[uint64]int64
	CC       CC
	Stat     isa.Stat
}

// buildSnapshot deep-copies the register file and the sparse non-zero
// memory view at the moment of retirement.
func buildSnapshot(pc uint64, regs *isa.RegFile, mem *isa.Memory, cc CC, stat isa.Stat) Snapshot {
	return Snapshot{
		PC:       pc,
		Reg:      regs.Snapshot(),
		MemWords: mem.NonZeroWords(),
		CC:       cc,
		Stat:     stat,
	}
}
