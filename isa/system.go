package isa

import "github.com/riscv64-iss/kernel/cpu"

// descEbreak matches the full 32-bit ebreak encoding: opcode 1110011, rd=0,
// funct3=0, rs1=0, rs2=1, funct7=0. The kernel's fetch/dispatch loop
// checks for this exact word before dispatch (spec.md §4.E step 3), so
// the descriptor below exists for registry completeness and for callers
// that dispatch through Execute directly (e.g. disassembly-adjacent
// tooling), not for the fast-path halt.
var descEbreak = &Descriptor{
	Name: "ebreak",
	Mask: 0xffffffff,
	Bits: 0b000000000001<<20 | 0b1110011,
	Disassemble: func(instr uint32) string {
		return "ebreak"
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		// PC is left pointing at the ebreak instruction itself, not past
		// it: the kernel's dispatch loop does not advance PC on this
		// path, and this Execute reports pcWritten=true to suppress the
		// default +4 advance if ever invoked outside the fast path.
		c.SetRunning(false)
		return true
	},
}

// IsEbreak reports whether instr is the exact ebreak encoding.
func IsEbreak(instr uint32) bool {
	return descEbreak.Matches(instr)
}
