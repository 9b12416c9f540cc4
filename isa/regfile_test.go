package isa_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Jecci-cmd/y86pipe/isa"
)

var _ = Describe("RegFile", func() {
	var rf *isa.RegFile

	BeforeEach(func() {
		rf = &isa.RegFile{}
	})

	It("starts zeroed", func() {
		Expect(rf.Get(isa.RAX)).To(Equal(int64(0)))
	})

	It("stores and retrieves a register value", func() {
		rf.Set(isa.RBX, 42)
		Expect(rf.Get(isa.RBX)).To(Equal(int64(42)))
	})

	It("reads RNONE as 0", func() {
		rf.Set(isa.RAX, 99)
		Expect(rf.Get(isa.RNONE)).To(Equal(int64(0)))
	})

	It("discards writes to RNONE", func() {
		rf.Set(isa.RNONE, 123)
		Expect(rf.Get(isa.RNONE)).To(Equal(int64(0)))
	})

	It("resets all registers to zero", func() {
		rf.Set(isa.RCX, 7)
		rf.Reset()
		Expect(rf.Get(isa.RCX)).To(Equal(int64(0)))
	})

	It("snapshots registers in canonical order", func() {
		rf.Set(isa.RAX, 1)
		rf.Set(isa.R14, 14)
		snap := rf.Snapshot()
		Expect(snap[isa.RAX]).To(Equal(int64(1)))
		Expect(snap[isa.R14]).To(Equal(int64(14)))
	})
})
