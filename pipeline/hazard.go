package pipeline

import "github.com/Jecci-cmd/y86pipe/isa"

// HazardUnit computes forwarding and the load-use stall condition.
// It holds no state of its own; every method is a pure function of the
// latches handed to it.
type HazardUnit struct{}

// Forward resolves D/E's valA/valB against the in-flight E/M and M/W
// results, just before Execute consumes them. The latch itself keeps its
// pre-forwarding read so a stall-replay sees any
// intervening write-back.
func (HazardUnit) Forward(d DELatch, em EMLatch, mw MWLatch) (valA, valB uint64) {
	valA, valB = d.ValA, d.ValB

	if v, ok := forwardValue(d.SrcA, em, mw); ok {
		valA = v
	}
	if v, ok := forwardValue(d.SrcB, em, mw); ok {
		valB = v
	}
	return
}

// forwardValue implements the priority chain: E/M.dstE, then M/W.dstE,
// then M/W.dstM, each skipped for RNONE and for a CMOVXX whose Cnd is
// false (its dstE write never happens, so it must not be forwarded).
func forwardValue(src isa.Reg, em EMLatch, mw MWLatch) (uint64, bool) {
	if src == isa.RNONE {
		return 0, false
	}

	if em.Valid && !em.IsBubble && em.DstE == src {
		if !(em.ICode == isa.RRMOVQ && !em.Cnd) {
			return em.ValE, true
		}
	}
	if mw.Valid && !mw.IsBubble && mw.DstE == src {
		if !(mw.ICode == isa.RRMOVQ && !mw.Cnd) {
			return mw.ValE, true
		}
	}
	if mw.Valid && !mw.IsBubble && mw.DstM == src {
		return mw.ValM, true
	}
	return 0, false
}

// LoadUseStall reports whether the D/E instruction must stall because the
// in-flight E/M load hasn't yet produced its result.
func (HazardUnit) LoadUseStall(d DELatch, em EMLatch) bool {
	if !em.Valid || em.IsBubble {
		return false
	}
	if em.ICode != isa.MRMOVQ && em.ICode != isa.POPQ {
		return false
	}
	if em.DstM == isa.RNONE {
		return false
	}

	if !d.Valid || d.IsBubble {
		return false
	}

	switch d.ICode {
	case isa.RRMOVQ, isa.RMMOVQ, isa.OPQ, isa.PUSHQ:
		if d.SrcA == em.DstM {
			return true
		}
	}
	switch d.ICode {
	case isa.OPQ, isa.RMMOVQ, isa.MRMOVQ:
		if d.SrcB == em.DstM {
			return true
		}
	}
	if d.ICode == isa.RET && em.DstM == isa.RSP {
		return true
	}
	return false
}
