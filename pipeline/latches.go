package pipeline

import "github.com/Jecci-cmd/y86pipe/isa"

// CC holds the three Y86-64 condition-code flags.
type CC struct {
	ZF, SF, OF bool
}

// InitialCC is the architectural reset value: ZF=1, SF=0, OF=0.
var InitialCC = CC{ZF: true}

// FDLatch is the Fetch/Decode pipeline register.
type FDLatch struct {
	Valid bool
	ICode isa.ICode
	IFun  isa.IFun
	RA    isa.Reg
	RB    isa.Reg
	ValC  uint64
	ValP  uint64
	// Length is the fetched instruction's encoded length, carried through
	// to let a faulting write-back recompute its own address.
	Length uint64
	Stat   isa.Stat
}

// DELatch is the Decode/Execute pipeline register.
type DELatch struct {
	Valid    bool
	IsBubble bool
	ICode    isa.ICode
	IFun     isa.IFun
	ValA     uint64
	ValB     uint64
	ValC     uint64
	ValP     uint64
	Length   uint64
	SrcA     isa.Reg
	SrcB     isa.Reg
	DstE     isa.Reg
	DstM     isa.Reg
	Stat     isa.Stat
}

// EMLatch is the Execute/Memory pipeline register.
type EMLatch struct {
	Valid    bool
	IsBubble bool
	ICode    isa.ICode
	ValE     uint64
	ValA     uint64 // value to store to memory, or old RSP for POPQ/RET
	ValC     uint64 // branch/call target
	ValP     uint64
	Length   uint64
	DstE     isa.Reg
	DstM     isa.Reg
	Cnd      bool
	SetCC    bool
	CC       CC
	Stat     isa.Stat
}

// MWLatch is the Memory/Writeback pipeline register.
type MWLatch struct {
	Valid    bool
	IsBubble bool
	ICode    isa.ICode
	ValE     uint64
	ValM     uint64
	ValC     uint64
	ValP     uint64
	Length   uint64
	DstE     isa.Reg
	DstM     isa.Reg
	Cnd      bool
	SetCC    bool
	CC       CC
	Stat     isa.Stat
}

// bubbleDE and bubbleEM return a valid, empty latch injected on a stall or
// control-hazard flush. M/W never needs one: it always comes from
// Memory's output for the E/M it was handed, bubble or not.

func bubbleDE() DELatch {
	return DELatch{
		Valid:    true,
		IsBubble: true,
		ICode:    isa.NOP,
		SrcA:     isa.RNONE,
		SrcB:     isa.RNONE,
		DstE:     isa.RNONE,
		DstM:     isa.RNONE,
		Stat:     isa.AOK,
	}
}

func bubbleEM() EMLatch {
	return EMLatch{
		Valid:    true,
		IsBubble: true,
		ICode:    isa.NOP,
		DstE:     isa.RNONE,
		DstM:     isa.RNONE,
		Stat:     isa.AOK,
	}
}
