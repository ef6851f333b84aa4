package isa

import (
	"fmt"

	"github.com/riscv64-iss/kernel/cpu"
)

// ---------- RV64I loads (opcode 0000011) ----------

var descLw = &Descriptor{
	Name: "lw",
	Mask: mask(true, true, false, false, false, false),
	Bits: 0b010<<12 | 0b0000011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("lw %s, %s", regName(Rd(instr)), memOperand(int64(IImm(instr)), Rs1(instr)))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		addr := c.ReadReg(Rs1(instr)) + IImm(instr)
		c.CountLoad()
		v := c.Load32(addr)
		c.WriteReg(Rd(instr), SignExtend(uint64(v), 31))
		return false
	},
}

var descLd = &Descriptor{
	Name: "ld",
	Mask: mask(true, true, false, false, false, false),
	Bits: 0b011<<12 | 0b0000011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("ld %s, %s", regName(Rd(instr)), memOperand(int64(IImm(instr)), Rs1(instr)))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		addr := c.ReadReg(Rs1(instr)) + IImm(instr)
		c.CountLoad()
		c.WriteReg(Rd(instr), c.Load64(addr))
		return false
	},
}

// ---------- RV64I stores (opcode 0100011) ----------

var descSw = &Descriptor{
	Name: "sw",
	Mask: mask(true, true, false, false, false, false),
	Bits: 0b010<<12 | 0b0100011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("sw %s, %s", regName(Rs2(instr)), memOperand(int64(SImm(instr)), Rs1(instr)))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		addr := c.ReadReg(Rs1(instr)) + SImm(instr)
		v := uint32(c.ReadReg(Rs2(instr)))
		c.Store32(addr, v)
		c.CountStore()
		return false
	},
}

var descSd = &Descriptor{
	Name: "sd",
	Mask: mask(true, true, false, false, false, false),
	Bits: 0b011<<12 | 0b0100011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("sd %s, %s", regName(Rs2(instr)), memOperand(int64(SImm(instr)), Rs1(instr)))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		addr := c.ReadReg(Rs1(instr)) + SImm(instr)
		v := c.ReadReg(Rs2(instr))
		c.Store64(addr, v)
		c.CountStore()
		return false
	},
}
