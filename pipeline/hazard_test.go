package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Jecci-cmd/y86pipe/isa"
	"github.com/Jecci-cmd/y86pipe/pipeline"
)

var _ = Describe("HazardUnit", func() {
	var hz pipeline.HazardUnit

	Describe("Forward", func() {
		It("forwards E/M.dstE over a stale decoded value", func() {
			d := pipeline.DELatch{Valid: true, SrcA: isa.RAX, SrcB: isa.RNONE, ValA: 1, ValB: 2}
			em := pipeline.EMLatch{Valid: true, DstE: isa.RAX, ValE: 99}
			mw := pipeline.MWLatch{DstE: isa.RNONE, DstM: isa.RNONE}

			valA, valB := hz.Forward(d, em, mw)
			Expect(valA).To(Equal(uint64(99)))
			Expect(valB).To(Equal(uint64(2)))
		})

		It("falls back to M/W.dstM when E/M has no match", func() {
			d := pipeline.DELatch{Valid: true, SrcA: isa.RCX, SrcB: isa.RNONE}
			em := pipeline.EMLatch{DstE: isa.RNONE, DstM: isa.RNONE}
			mw := pipeline.MWLatch{Valid: true, DstM: isa.RCX, ValM: 42}

			valA, _ := hz.Forward(d, em, mw)
			Expect(valA).To(Equal(uint64(42)))
		})

		It("never forwards a CMOVXX whose Cnd was false", func() {
			d := pipeline.DELatch{Valid: true, SrcA: isa.RAX, ValA: 7}
			em := pipeline.EMLatch{Valid: true, ICode: isa.RRMOVQ, DstE: isa.RAX, ValE: 123, Cnd: false}
			mw := pipeline.MWLatch{}

			valA, _ := hz.Forward(d, em, mw)
			Expect(valA).To(Equal(uint64(7)))
		})

		It("never matches RNONE", func() {
			d := pipeline.DELatch{Valid: true, SrcA: isa.RNONE, ValA: 5}
			em := pipeline.EMLatch{Valid: true, DstE: isa.RNONE, ValE: 999}
			mw := pipeline.MWLatch{}

			valA, _ := hz.Forward(d, em, mw)
			Expect(valA).To(Equal(uint64(5)))
		})
	})

	Describe("LoadUseStall", func() {
		It("stalls an OPQ whose srcB is the pending load's target", func() {
			d := pipeline.DELatch{Valid: true, ICode: isa.OPQ, SrcB: isa.RCX}
			em := pipeline.EMLatch{Valid: true, ICode: isa.MRMOVQ, DstM: isa.RCX}
			Expect(hz.LoadUseStall(d, em)).To(BeTrue())
		})

		It("stalls a RET when the pending load targets RSP", func() {
			d := pipeline.DELatch{Valid: true, ICode: isa.RET}
			em := pipeline.EMLatch{Valid: true, ICode: isa.POPQ, DstM: isa.RSP}
			Expect(hz.LoadUseStall(d, em)).To(BeTrue())
		})

		It("does not stall when the E/M instruction is not a load", func() {
			d := pipeline.DELatch{Valid: true, ICode: isa.OPQ, SrcB: isa.RCX}
			em := pipeline.EMLatch{Valid: true, ICode: isa.OPQ, DstE: isa.RCX}
			Expect(hz.LoadUseStall(d, em)).To(BeFalse())
		})

		It("does not stall a bubble in E/M", func() {
			d := pipeline.DELatch{Valid: true, ICode: isa.OPQ, SrcB: isa.RCX}
			em := pipeline.EMLatch{Valid: true, IsBubble: true, ICode: isa.MRMOVQ, DstM: isa.RCX}
			Expect(hz.LoadUseStall(d, em)).To(BeFalse())
		})
	})
})
