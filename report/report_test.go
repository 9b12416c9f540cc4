package report_test

import (
	"bytes"
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Jecci-cmd/y86pipe/isa"
	"github.com/Jecci-cmd/y86pipe/pipeline"
	"github.com/Jecci-cmd/y86pipe/report"
)

var _ = Describe("Snapshots", func() {
	It("orders register keys rax..r14 regardless of map iteration", func() {
		snap := pipeline.Snapshot{PC: 1, Stat: isa.HLT}
		snap.Reg[isa.RAX] = 4660

		var buf bytes.Buffer
		Expect(report.Snapshots(&buf, []pipeline.Snapshot{snap})).To(Succeed())

		idx := func(key string) int { return strings.Index(buf.String(), "\""+key+"\"") }
		Expect(idx("rax")).To(BeNumerically("<", idx("rcx")))
		Expect(idx("r9")).To(BeNumerically("<", idx("r10")))
	})

	It("round-trips through JSON with the documented shape", func() {
		snap := pipeline.Snapshot{
			PC:       42,
			MemWords: map[uint64]int64{8: -1},
			CC:       pipeline.CC{ZF: true},
			Stat:     isa.AOK,
		}
		var buf bytes.Buffer
		Expect(report.Snapshots(&buf, []pipeline.Snapshot{snap})).To(Succeed())

		var decoded []map[string]interface{}
		Expect(json.Unmarshal(buf.Bytes(), &decoded)).To(Succeed())
		Expect(decoded).To(HaveLen(1))
		Expect(decoded[0]["PC"]).To(BeNumerically("==", 42))
		Expect(decoded[0]["STAT"]).To(BeNumerically("==", isa.AOK))
	})
})

var _ = Describe("Stats", func() {
	It("formats IPC to four decimal places", func() {
		var buf bytes.Buffer
		report.Stats(&buf, pipeline.Statistics{TotalCycles: 8, InstructionsRetired: 5})
		Expect(buf.String()).To(ContainSubstring("IPC (Instructions Per Cycle): 0.6250"))
		Expect(buf.String()).To(ContainSubstring("Total Cycles: 8"))
	})
})
