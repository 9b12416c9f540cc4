// Package pipeline implements the five-stage Y86-64 SEQ+ pipeline: four
// latches (F/D, D/E, E/M, M/W), the hazard unit that resolves forwarding
// and stalls, and the cycle driver that advances them all in lockstep.
package pipeline

import "github.com/Jecci-cmd/y86pipe/isa"

// MaxCycles is the hard safety cap on simulated cycles. A program
// that never halts aborts with STAT_INS rather than looping forever.
const MaxCycles = 1_000_000

// Statistics holds raw cycle/stall counters plus a derived rate.
type Statistics struct {
	TotalCycles         uint64
	InstructionsRetired uint64
	StallCycles         uint64
	BubbleCycles        uint64
	// MemStallCycles accumulates only when an optional L1 cache is attached; it never affects retirement timing.
	MemStallCycles uint64
}

// IPC is instructions retired per cycle.
func (s Statistics) IPC() float64 {
	if s.TotalCycles == 0 {
		return 0
	}
	return float64(s.InstructionsRetired) / float64(s.TotalCycles)
}

// Option configures a Simulator at construction time.
type Option func(*Simulator)

// Simulator owns the architectural state and the four pipeline latches,
// and drives them through the fixed W→M→E→D→F cycle order.
type Simulator struct {
	Mem  *isa.Memory
	Regs *isa.RegFile
	CC   CC
	Stat isa.Stat
	PC   uint64

	fd FDLatch
	de DELatch
	em EMLatch
	mw MWLatch

	Snapshots []Snapshot
	Stats     Statistics

	fetch   FetchStage
	decode  DecodeStage
	execute ExecuteStage
	memory  MemoryStage
	writeb  WritebackStage
	hazard  HazardUnit

	icache *cacheExtension
	dcache *cacheExtension
}

// New creates a Simulator with the given memory image already loaded and
// the architectural state reset.
func New(mem *isa.Memory, opts ...Option) *Simulator {
	regs := &isa.RegFile{}
	s := &Simulator{
		Mem:  mem,
		Regs: regs,
		CC:   InitialCC,
		Stat: isa.AOK,
	}
	s.hazard = HazardUnit{}
	s.decode = DecodeStage{Regs: regs}
	s.execute = ExecuteStage{CC: &s.CC}
	s.memory = MemoryStage{Mem: mem}
	s.writeb = WritebackStage{Regs: regs}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run advances the simulator until it halts, faults, or hits the hard
// cycle cap.
func (s *Simulator) Run() {
	for s.running() {
		if s.Stats.TotalCycles >= MaxCycles {
			s.Stat = isa.INS
			break
		}
		s.Tick()
	}
	s.finalizeHaltSnapshot()
}

func (s *Simulator) running() bool {
	if s.Stat == isa.AOK {
		return true
	}
	return s.anyLatchValid()
}

func (s *Simulator) anyLatchValid() bool {
	return (s.fd.Valid) ||
		(s.de.Valid && !s.de.IsBubble) ||
		(s.em.Valid && !s.em.IsBubble) ||
		(s.mw.Valid && !s.mw.IsBubble)
}

// Tick runs exactly one cycle: write-back, memory, stall/flush detection,
// execute, decode, fetch, then commit all four latches together.
func (s *Simulator) Tick() {
	prevFD, prevDE, prevEM, prevMW := s.fd, s.de, s.em, s.mw

	// 2. Write-back on prev M/W.
	wb := s.writeb.Writeback(prevMW, s.Stat, s.Mem)
	s.Stat = wb.NewStat
	if wb.Retired {
		s.Stats.InstructionsRetired++
		if wb.Snapshot != nil {
			s.Snapshots = append(s.Snapshots, *wb.Snapshot)
		}
	}

	// 3. Memory on prev E/M.
	memRes := s.memory.Memory(prevEM)
	newMW := memRes.Latch
	if addr, ok := dataAccessAddr(prevEM); ok {
		s.accountDataAccess(addr)
	}

	// 4. Load-use stall from prev D/E, prev E/M; ret_flush from new M/W.
	stall := s.hazard.LoadUseStall(prevDE, prevEM)
	retFlush := memRes.RetFlush

	// 5. Execute (with forwarding) on prev D/E into new E/M, unless stalled.
	var newEM EMLatch
	if stall {
		newEM = bubbleEM()
		s.Stats.StallCycles++
	} else {
		d := prevDE
		d.ValA, d.ValB = s.hazard.Forward(prevDE, prevEM, prevMW)
		newEM = s.execute.Execute(d)
	}

	// 6. Branch misprediction flush, detected on new E/M.
	jmpFlush := newEM.Valid && !newEM.IsBubble && newEM.ICode == isa.JXX && newEM.Cnd
	if jmpFlush {
		s.PC = newEM.ValC
		s.Stats.BubbleCycles += 2
	}

	// 7. Fill new D/E.
	var newDE DELatch
	switch {
	case stall:
		newDE = rereadOperands(prevDE, s.Regs)
	case retFlush, jmpFlush:
		newDE = bubbleDE()
	default:
		newDE = s.decode.Decode(prevFD)
	}

	// 8. Return flush also kills the new E/M (three-stage kill).
	if retFlush {
		newEM = bubbleEM()
		s.PC = memRes.RetPC
		s.Stats.BubbleCycles += 3
	}

	// 9. Fetch. A fetch fault still on its way to write-back stops further
	// fetching, the same way a HALT in the pipeline does.
	fetchFault := (prevFD.Valid && prevFD.Stat != isa.AOK) ||
		(prevDE.Valid && !prevDE.IsBubble && prevDE.Stat != isa.AOK) ||
		(prevEM.Valid && !prevEM.IsBubble && prevEM.Stat != isa.AOK)
	var newFD FDLatch
	switch {
	case stall:
		newFD = prevFD
	case retFlush, jmpFlush, fetchFault, haltInPipeline(prevFD, prevDE, prevEM, prevMW):
		newFD = FDLatch{Stat: isa.AOK}
	default:
		s.accountFetch(s.PC)
		f := s.fetch.Fetch(s.Mem, s.PC, s.Stat)
		if s.Stat == isa.AOK && f.Stat != isa.AOK {
			// The faulting instruction travels down the pipe as a live latch
			// so it retires in program order and records the fault snapshot.
			f.Valid = true
		}
		s.PC = NextPC(s.PC, f)
		newFD = f
	}

	// 10. Commit.
	s.fd, s.de, s.em, s.mw = newFD, newDE, newEM, newMW
	s.Stats.TotalCycles++
}

// rereadOperands holds a stalled D/E latch in place but re-reads its
// register operands so a same-cycle write-back is visible on replay.
func rereadOperands(d DELatch, regs *isa.RegFile) DELatch {
	out := d
	if d.ICode != isa.CALL {
		out.ValA = uint64(regs.Get(d.SrcA))
	}
	out.ValB = uint64(regs.Get(d.SrcB))
	return out
}

// dataAccessAddr reports the memory address an E/M instruction touches,
// for cache accounting purposes only.
func dataAccessAddr(em EMLatch) (uint64, bool) {
	if !em.Valid || em.IsBubble || em.Stat != isa.AOK {
		return 0, false
	}
	switch em.ICode {
	case isa.MRMOVQ:
		return em.ValE, true
	case isa.POPQ, isa.RET:
		return em.ValA, true
	case isa.RMMOVQ, isa.PUSHQ, isa.CALL:
		return em.ValE, true
	default:
		return 0, false
	}
}

func haltInPipeline(fd FDLatch, de DELatch, em EMLatch, mw MWLatch) bool {
	if fd.Valid && fd.ICode == isa.HALT {
		return true
	}
	if de.Valid && !de.IsBubble && de.ICode == isa.HALT {
		return true
	}
	if em.Valid && !em.IsBubble && em.ICode == isa.HALT {
		return true
	}
	if mw.Valid && !mw.IsBubble && mw.ICode == isa.HALT {
		return true
	}
	return false
}

// finalizeHaltSnapshot covers the drain edge case where the run loop
// stopped with STAT_HLT but write-back never got to record it.
func (s *Simulator) finalizeHaltSnapshot() {
	if s.Stat != isa.HLT {
		return
	}
	if n := len(s.Snapshots); n > 0 && s.Snapshots[n-1].Stat == isa.HLT {
		return
	}
	s.Snapshots = append(s.Snapshots, buildSnapshot(s.PC, s.Regs, s.Mem, s.CC, isa.HLT))
}
