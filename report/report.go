// Package report renders simulator snapshots as JSON and writes the
// human-readable performance summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Jecci-cmd/y86pipe/isa"
	"github.com/Jecci-cmd/y86pipe/pipeline"
)

// regJSON's field order is the JSON serialization order, not something
// encoding/json infers — a map would sort "r10" before "r9"
// alphabetically, which is not the canonical rax..r14 ISA order.
type regJSON struct {
	Rax int64 `json:"rax"`
	Rcx int64 `json:"rcx"`
	Rdx int64 `json:"rdx"`
	Rbx int64 `json:"rbx"`
	Rsp int64 `json:"rsp"`
	Rbp int64 `json:"rbp"`
	Rsi int64 `json:"rsi"`
	Rdi int64 `json:"rdi"`
	R8  int64 `json:"r8"`
	R9  int64 `json:"r9"`
	R10 int64 `json:"r10"`
	R11 int64 `json:"r11"`
	R12 int64 `json:"r12"`
	R13 int64 `json:"r13"`
	R14 int64 `json:"r14"`
}

type ccJSON struct {
	ZF int `json:"ZF"`
	SF int `json:"SF"`
	OF int `json:"OF"`
}

type snapshotJSON struct {
	PC   uint64           `json:"PC"`
	Reg  regJSON          `json:"REG"`
	Mem  map[string]int64 `json:"MEM"`
	CC   ccJSON           `json:"CC"`
	Stat uint8            `json:"STAT"`
}

// Snapshots writes the full snapshot sequence as a single JSON array.
func Snapshots(w io.Writer, snaps []pipeline.Snapshot) error {
	out := make([]snapshotJSON, len(snaps))
	for i, s := range snaps {
		out[i] = toJSON(s)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(out)
}

func toJSON(s pipeline.Snapshot) snapshotJSON {
	r := s.Reg
	mem := make(map[string]int64, len(s.MemWords))
	for addr, v := range s.MemWords {
		mem[strconv.FormatUint(addr, 10)] = v
	}
	return snapshotJSON{
		PC: s.PC,
		Reg: regJSON{
			Rax: r[isa.RAX], Rcx: r[isa.RCX], Rdx: r[isa.RDX], Rbx: r[isa.RBX],
			Rsp: r[isa.RSP], Rbp: r[isa.RBP], Rsi: r[isa.RSI], Rdi: r[isa.RDI],
			R8: r[isa.R8], R9: r[isa.R9], R10: r[isa.R10], R11: r[isa.R11],
			R12: r[isa.R12], R13: r[isa.R13], R14: r[isa.R14],
		},
		Mem:  mem,
		CC:   ccJSON{ZF: bit(s.CC.ZF), SF: bit(s.CC.SF), OF: bit(s.CC.OF)},
		Stat: uint8(s.Stat),
	}
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Stats writes the human-readable performance summary to w, matching the
// source's stderr report verbatim.
func Stats(w io.Writer, stats pipeline.Statistics) {
	fmt.Fprintln(w, "=== Performance Statistics ===")
	fmt.Fprintf(w, "Total Cycles: %d\n", stats.TotalCycles)
	fmt.Fprintf(w, "Instructions Retired: %d\n", stats.InstructionsRetired)
	fmt.Fprintf(w, "IPC (Instructions Per Cycle): %.4f\n", stats.IPC())
	fmt.Fprintf(w, "Stall Cycles: %d\n", stats.StallCycles)
	fmt.Fprintf(w, "Bubble Cycles: %d\n", stats.BubbleCycles)
}
