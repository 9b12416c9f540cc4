// Package decode parses a single Y86-64 instruction out of memory at a
// given byte offset. Decoding is a pure function of memory
// contents and has no pipeline side effects.
package decode

import "github.com/Jecci-cmd/y86pipe/isa"

// Instruction is the parsed form of one Y86-64 instruction.
type Instruction struct {
	ICode  isa.ICode
	IFun   isa.IFun
	RA, RB isa.Reg
	ValC   uint64
	// Length is the instruction's encoded length in bytes: 1, 2, 9
	// (JXX/CALL), or 10.
	Length uint64
	Stat   isa.Stat
}

// Decode parses one instruction from mem at pc. It never mutates mem.
func Decode(mem *isa.Memory, pc uint64) Instruction {
	if pc >= isa.MemSize {
		return Instruction{Stat: isa.ADR}
	}

	b0, _ := mem.ReadByte(pc)
	icode := isa.ICode(b0 >> 4)
	ifun := isa.IFun(b0 & 0xF)

	if !isa.Valid(icode) {
		return Instruction{ICode: icode, IFun: ifun, Stat: isa.INS}
	}

	inst := Instruction{
		ICode:  icode,
		IFun:   ifun,
		RA:     isa.RNONE,
		RB:     isa.RNONE,
		Length: 1,
		Stat:   isa.AOK,
	}

	if isa.NeedsRegIDs(icode) {
		b1, ok := mem.ReadByte(pc + 1)
		if !ok {
			return Instruction{ICode: icode, IFun: ifun, Stat: isa.ADR}
		}
		inst.RA = isa.Reg(b1 >> 4)
		inst.RB = isa.Reg(b1 & 0xF)
		inst.Length = 2
	}

	if isa.NeedsValC(icode) {
		valC, ok := mem.Read64(pc + inst.Length)
		if !ok {
			inst.Stat = isa.ADR
			return inst
		}
		inst.ValC = valC
		inst.Length += 8
	}

	return inst
}
