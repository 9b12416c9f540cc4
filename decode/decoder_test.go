package decode_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Jecci-cmd/y86pipe/decode"
	"github.com/Jecci-cmd/y86pipe/isa"
)

var _ = Describe("Decode", func() {
	var mem *isa.Memory

	BeforeEach(func() {
		mem = &isa.Memory{}
	})

	It("decodes a 1-byte HALT", func() {
		mem.WriteByte(0, 0x00)
		inst := decode.Decode(mem, 0)
		Expect(inst.ICode).To(Equal(isa.HALT))
		Expect(inst.Length).To(Equal(uint64(1)))
		Expect(inst.Stat).To(Equal(isa.AOK))
	})

	It("decodes irmovq $0x1234, %rax (10 bytes)", func() {
		mem.WriteByte(0, 0x30) // IRMOVQ, ifun=0
		mem.WriteByte(1, 0xF0) // rA=RNONE, rB=RAX
		mem.Write64(2, 0x1234)
		inst := decode.Decode(mem, 0)
		Expect(inst.ICode).To(Equal(isa.IRMOVQ))
		Expect(inst.RA).To(Equal(isa.RNONE))
		Expect(inst.RB).To(Equal(isa.RAX))
		Expect(inst.ValC).To(Equal(uint64(0x1234)))
		Expect(inst.Length).To(Equal(uint64(10)))
	})

	It("decodes a 2-byte addq %rcx, %rbx", func() {
		mem.WriteByte(0, 0x60) // OPQ, ifun=ADD
		mem.WriteByte(1, 0x13) // rA=RCX, rB=RBX
		inst := decode.Decode(mem, 0)
		Expect(inst.ICode).To(Equal(isa.OPQ))
		Expect(inst.IFun).To(Equal(isa.ADD))
		Expect(inst.RA).To(Equal(isa.RCX))
		Expect(inst.RB).To(Equal(isa.RBX))
		Expect(inst.Length).To(Equal(uint64(2)))
	})

	It("flags an illegal icode as STAT_INS", func() {
		mem.WriteByte(0, 0xFF)
		inst := decode.Decode(mem, 0)
		Expect(inst.Stat).To(Equal(isa.INS))
	})

	It("flags icode 0xC as illegal", func() {
		mem.WriteByte(0, 0xC0)
		inst := decode.Decode(mem, 0)
		Expect(inst.Stat).To(Equal(isa.INS))
	})

	It("flags a truncated register byte as STAT_ADR", func() {
		inst := decode.Decode(mem, isa.MemSize-1)
		// byte at MemSize-1 is 0 -> icode HALT, no regids needed, should be fine
		Expect(inst.Stat).To(Equal(isa.AOK))

		mem.WriteByte(isa.MemSize-1, 0x60) // OPQ needs a register byte that doesn't exist
		inst = decode.Decode(mem, isa.MemSize-1)
		Expect(inst.Stat).To(Equal(isa.ADR))
	})

	It("flags a truncated valC as STAT_ADR", func() {
		addr := uint64(isa.MemSize - 4)
		mem.WriteByte(addr, 0x30)   // IRMOVQ
		mem.WriteByte(addr+1, 0xF0) // reg byte fits
		inst := decode.Decode(mem, addr)
		Expect(inst.Stat).To(Equal(isa.ADR))
	})

	It("reports PC at or beyond MemSize as STAT_ADR", func() {
		inst := decode.Decode(mem, isa.MemSize)
		Expect(inst.Stat).To(Equal(isa.ADR))
	})
})
