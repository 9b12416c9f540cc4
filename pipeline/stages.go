package pipeline

import (
	"github.com/Jecci-cmd/y86pipe/decode"
	"github.com/Jecci-cmd/y86pipe/isa"
)

// FetchStage turns the current PC and memory contents into a new F/D latch.
type FetchStage struct{}

// Fetch reads one instruction starting at pc. stat is the live
// architectural STAT; a non-AOK status produces an invalid latch (the
// pipeline is draining).
func (FetchStage) Fetch(mem *isa.Memory, pc uint64, stat isa.Stat) FDLatch {
	if stat != isa.AOK {
		return FDLatch{Stat: stat}
	}

	inst := decode.Decode(mem, pc)
	return FDLatch{
		Valid:  inst.Stat == isa.AOK,
		ICode:  inst.ICode,
		IFun:   inst.IFun,
		RA:     inst.RA,
		RB:     inst.RB,
		ValC:   inst.ValC,
		ValP:   pc + inst.Length,
		Length: inst.Length,
		Stat:   inst.Stat,
	}
}

// NextPC implements the speculative next-PC predictor: always-taken for
// CALL, not-taken for JXX, held at curPC for RET/HALT. curPC is the PC
// that was just fetched from; f_d is the latch Fetch just
// produced for that PC. RET's target is not known here — the caller must
// leave PC untouched for RET and let the Memory stage supply it.
func NextPC(curPC uint64, f_d FDLatch) uint64 {
	switch f_d.ICode {
	case isa.CALL:
		return f_d.ValC
	case isa.JXX:
		return f_d.ValP
	case isa.RET, isa.HALT:
		return curPC
	default:
		return f_d.ValP
	}
}

// DecodeStage derives source/destination registers and reads the register
// file.
type DecodeStage struct {
	Regs *isa.RegFile
}

// Decode derives srcA/srcB/dstE/dstM from the icode and register byte,
// reads the operands, and applies the per-icode valA overrides (PUSHQ,
// POPQ/RET, CALL's return address).
func (d DecodeStage) Decode(f FDLatch) DELatch {
	out := DELatch{
		Valid:  f.Valid,
		ICode:  f.ICode,
		IFun:   f.IFun,
		ValC:   f.ValC,
		ValP:   f.ValP,
		Length: f.Length,
		Stat:   f.Stat,
	}

	srcA, srcB, dstE, dstM := decodeRegs(f.ICode, f.RA, f.RB)
	out.SrcA, out.SrcB, out.DstE, out.DstM = srcA, srcB, dstE, dstM

	out.ValA = uint64(d.Regs.Get(srcA))
	out.ValB = uint64(d.Regs.Get(srcB))

	switch f.ICode {
	case isa.PUSHQ:
		out.ValA = uint64(d.Regs.Get(f.RA))
	case isa.POPQ, isa.RET:
		out.ValA = uint64(d.Regs.Get(isa.RSP))
	case isa.CALL:
		out.ValA = f.ValP // return address
	}

	return out
}

// decodeRegs maps an icode and its register byte to source and
// destination registers.
func decodeRegs(icode isa.ICode, rA, rB isa.Reg) (srcA, srcB, dstE, dstM isa.Reg) {
	srcA, srcB, dstE, dstM = isa.RNONE, isa.RNONE, isa.RNONE, isa.RNONE

	switch icode {
	case isa.RRMOVQ: // covers CMOVXX too, same icode
		srcA = rA
		dstE = rB
	case isa.IRMOVQ:
		dstE = rB
	case isa.RMMOVQ:
		srcA = rA
		srcB = rB
	case isa.MRMOVQ:
		srcB = rB
		dstM = rA
	case isa.OPQ:
		srcA = rA
		srcB = rB
		dstE = rB
	case isa.PUSHQ:
		srcA = rA
		srcB = isa.RSP
		dstE = isa.RSP
	case isa.POPQ:
		srcA = isa.RSP
		srcB = isa.RSP
		dstE = isa.RSP
		dstM = rA
	case isa.CALL:
		srcB = isa.RSP
		dstE = isa.RSP
	case isa.RET:
		srcA = isa.RSP
		srcB = isa.RSP
		dstE = isa.RSP
	}
	return
}

// ExecuteStage computes valE and Cnd, and advances the condition codes for
// OPQ instructions.
type ExecuteStage struct {
	// CC is the live architectural condition-code state. OPQ writes it
	// immediately so that a JXX/CMOVXX executing in any later cycle
	// (including the very next one) observes it.
	// Non-OPQ instructions do not touch it.
	CC *CC
}

// Execute computes valE and Cnd for the instruction in d, folding in
// forwarded operands the caller has already substituted into d.ValA/ValB.
func (e ExecuteStage) Execute(d DELatch) EMLatch {
	out := EMLatch{
		Valid:    d.Valid,
		IsBubble: d.IsBubble,
		ICode:    d.ICode,
		DstE:     d.DstE,
		DstM:     d.DstM,
		ValA:     d.ValA,
		ValC:     d.ValC,
		ValP:     d.ValP,
		Length:   d.Length,
		Stat:     d.Stat,
	}

	switch d.ICode {
	case isa.OPQ:
		valA := int64(d.ValA)
		valB := int64(d.ValB)
		valE, cc := aluOp(d.IFun, valA, valB)
		out.ValE = uint64(valE)
		out.SetCC = true
		out.CC = cc
		*e.CC = cc

	case isa.IRMOVQ:
		out.ValE = d.ValC
		out.Cnd = true

	case isa.RRMOVQ: // RRMOVQ (ifun=0) or CMOVXX (ifun!=0)
		out.ValE = d.ValA
		if d.IFun == 0 {
			out.Cnd = true
		} else {
			out.Cnd = evalCondition(d.IFun, *e.CC)
		}

	case isa.RMMOVQ, isa.MRMOVQ:
		out.ValE = d.ValB + d.ValC

	case isa.PUSHQ, isa.CALL:
		out.ValE = d.ValB - 8
		if d.ICode == isa.CALL {
			out.Cnd = true
		}

	case isa.POPQ, isa.RET:
		out.ValE = d.ValB + 8

	case isa.JXX:
		out.Cnd = evalCondition(d.IFun, *e.CC)
	}

	if d.ICode != isa.OPQ {
		out.SetCC = false
		out.CC = *e.CC
	}

	return out
}

// aluOp computes an OPQ result and the condition codes it sets.
func aluOp(ifun isa.IFun, valA, valB int64) (valE int64, cc CC) {
	switch ifun {
	case isa.ADD:
		valE = valA + valB
	case isa.SUB:
		valE = valB - valA
	case isa.AND:
		valE = valA & valB
	case isa.XOR:
		valE = valA ^ valB
	}

	cc.ZF = valE == 0
	cc.SF = valE < 0

	switch ifun {
	case isa.ADD:
		cc.OF = (valA > 0 && valB > 0 && valE < 0) || (valA < 0 && valB < 0 && valE > 0)
	case isa.SUB:
		// valE = valB - valA
		cc.OF = (valA < 0 && valB > 0 && valE < 0) || (valA > 0 && valB < 0 && valE > 0)
	default:
		// AND/XOR cannot overflow.
		cc.OF = false
	}
	return valE, cc
}

// evalCondition evaluates a CMOVXX/JXX condition code predicate.
func evalCondition(ifun isa.IFun, cc CC) bool {
	switch ifun {
	case isa.CYes:
		return true
	case isa.CLE:
		return (cc.SF != cc.OF) || cc.ZF
	case isa.CL:
		return cc.SF != cc.OF
	case isa.CE:
		return cc.ZF
	case isa.CNE:
		return !cc.ZF
	case isa.CGE:
		return cc.SF == cc.OF
	case isa.CG:
		return !cc.ZF && cc.SF == cc.OF
	default:
		return false
	}
}

// MemoryStage performs the single load or store an instruction needs
//. RetPC/RetFlush tell the driver to overwrite the
// architectural PC and flush control.
type MemoryStage struct {
	Mem *isa.Memory
}

// MemoryResult is the outcome of the Memory stage, including the
// control-flow side effect of a successful RET.
type MemoryResult struct {
	Latch    MWLatch
	RetFlush bool
	RetPC    uint64
}

// Memory performs the single load or store e's instruction needs.
func (m MemoryStage) Memory(e EMLatch) MemoryResult {
	out := MWLatch{
		Valid:    e.Valid,
		IsBubble: e.IsBubble,
		ICode:    e.ICode,
		ValE:     e.ValE,
		ValC:     e.ValC,
		ValP:     e.ValP,
		Length:   e.Length,
		DstE:     e.DstE,
		DstM:     e.DstM,
		Cnd:      e.Cnd,
		SetCC:    e.SetCC,
		CC:       e.CC,
		Stat:     e.Stat,
	}

	res := MemoryResult{}

	if out.Stat != isa.AOK || out.IsBubble || !out.Valid {
		res.Latch = out
		return res
	}

	switch e.ICode {
	case isa.MRMOVQ:
		val, ok := m.Mem.Read64(e.ValE)
		if !ok {
			out.Stat = isa.ADR
		} else {
			out.ValM = val
		}

	case isa.POPQ, isa.RET:
		val, ok := m.Mem.Read64(e.ValA) // ValA carries the old RSP
		if !ok {
			out.Stat = isa.ADR
		} else {
			out.ValM = val
			if e.ICode == isa.RET {
				res.RetFlush = true
				res.RetPC = val
			}
		}
	}

	switch e.ICode {
	case isa.RMMOVQ, isa.PUSHQ, isa.CALL:
		if !m.Mem.Write64(e.ValE, e.ValA) {
			out.Stat = isa.ADR
		}
	}

	res.Latch = out
	return res
}

// WritebackStage commits register writes and produces the snapshot for a
// retired instruction.
type WritebackStage struct {
	Regs *isa.RegFile
}

// WritebackResult communicates the architectural effects the driver must
// apply: the STAT to adopt, whether the machine has now halted, and the
// snapshot (if any) to append.
type WritebackResult struct {
	Retired  bool
	Snapshot *Snapshot
	NewStat  isa.Stat
	Halted   bool
}

// Writeback commits m's register writes and builds the retirement
// snapshot, or the fault snapshot if m carries a non-AOK STAT.
func (w WritebackStage) Writeback(m MWLatch, curStat isa.Stat, mem *isa.Memory) WritebackResult {
	if m.IsBubble || !m.Valid {
		return WritebackResult{NewStat: curStat}
	}

	if m.Stat != isa.AOK {
		if m.DstE != isa.RNONE {
			w.Regs.Set(m.DstE, int64(m.ValE))
		}
		pc := m.ValP - m.Length
		snap := buildSnapshot(pc, w.Regs, mem, m.CC, m.Stat)
		return WritebackResult{
			Retired:  true,
			Snapshot: &snap,
			NewStat:  m.Stat,
		}
	}

	writeDstE(w.Regs, m)

	if m.DstM != isa.RNONE {
		w.Regs.Set(m.DstM, int64(m.ValM))
	}

	newStat := curStat
	halted := false
	if m.ICode == isa.HALT {
		newStat = isa.HLT
		halted = true
	}

	pc := writebackPC(m)
	snap := buildSnapshot(pc, w.Regs, mem, m.CC, newStat)

	return WritebackResult{
		Retired:  true,
		Snapshot: &snap,
		NewStat:  newStat,
		Halted:   halted,
	}
}

func writeDstE(regs *isa.RegFile, m MWLatch) {
	if m.DstE == isa.RNONE {
		return
	}
	// CMOVXX (icode RRMOVQ with a nonzero ifun folded away by the time we
	// reach M/W — Cnd already encodes whether the move fires) writes only
	// when Cnd is true; every other instruction with a dstE writes
	// unconditionally.
	if m.ICode == isa.RRMOVQ {
		if m.Cnd {
			regs.Set(m.DstE, int64(m.ValE))
		}
		return
	}
	regs.Set(m.DstE, int64(m.ValE))
}

func writebackPC(m MWLatch) uint64 {
	switch m.ICode {
	case isa.CALL:
		return m.ValC
	case isa.JXX:
		if m.Cnd {
			return m.ValC
		}
		return m.ValP
	case isa.RET:
		return m.ValM
	case isa.HALT:
		return m.ValP - m.Length
	default:
		return m.ValP
	}
}
