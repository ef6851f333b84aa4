package isa

import (
	"fmt"

	"github.com/riscv64-iss/kernel/cpu"
)

// ---------- RV64I word variants: 32-bit result, sign-extended ----------

var descAddiw = &Descriptor{
	Name: "addiw",
	Mask: mask(true, true, false, false, false, false),
	Bits: 0b0011011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("addiw %s, %s, %s", regName(Rd(instr)), regName(Rs1(instr)), immHex(int64(IImm(instr))))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		rs1 := c.ReadReg(Rs1(instr))
		result32 := uint32(rs1+IImm(instr)) & 0xffffffff
		c.WriteReg(Rd(instr), SignExtend(uint64(result32), 31))
		return false
	},
}

var descAddw = &Descriptor{
	Name: "addw",
	Mask: mask(true, true, true, false, false, false),
	Bits: 0b0111011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("addw %s, %s, %s", regName(Rd(instr)), regName(Rs1(instr)), regName(Rs2(instr)))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		result32 := uint32(c.ReadReg(Rs1(instr)) + c.ReadReg(Rs2(instr)))
		c.WriteReg(Rd(instr), SignExtend(uint64(result32), 31))
		return false
	},
}
