package isa

// RegFile is the Y86-64 architectural register bank: fifteen signed
// 64-bit general-purpose registers. RNONE reads as 0 and discards writes.
type RegFile struct {
	regs [NumRegs]int64
}

// Get returns the value of reg, or 0 for RNONE.
func (r *RegFile) Get(reg Reg) int64 {
	if reg == RNONE || int(reg) >= NumRegs {
		return 0
	}
	return r.regs[reg]
}

// Set writes val to reg. Writes to RNONE are silently discarded.
func (r *RegFile) Set(reg Reg, val int64) {
	if reg == RNONE || int(reg) >= NumRegs {
		return
	}
	r.regs[reg] = val
}

// Snapshot returns a copy of all 15 registers in canonical rax..r14 order.
func (r *RegFile) Snapshot() [NumRegs]int64 {
	return r.regs
}

// Reset zeroes every register.
func (r *RegFile) Reset() {
	r.regs = [NumRegs]int64{}
}
