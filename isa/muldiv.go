package isa

import (
	"fmt"

	"github.com/riscv64-iss/kernel/cpu"
)

// ---------- RV64M ----------

var descMul = &Descriptor{
	Name: "mul",
	Mask: mask(true, true, true, false, false, false),
	Bits: 0b0000001<<25 | 0b0110011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("mul %s, %s, %s", regName(Rd(instr)), regName(Rs1(instr)), regName(Rs2(instr)))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		a := int64(c.ReadReg(Rs1(instr)))
		b := int64(c.ReadReg(Rs2(instr)))
		c.WriteReg(Rd(instr), uint64(a*b))
		return false
	},
}
