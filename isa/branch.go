package isa

import (
	"fmt"

	"github.com/riscv64-iss/kernel/cpu"
)

// ---------- RV64I control transfer ----------

var descJal = &Descriptor{
	Name: "jal",
	Mask: mask(true, false, false, false, false, false),
	Bits: 0b1101111,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("jal %s, %s", regName(Rd(instr)), immHex(int64(JImm(instr))))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		link := c.PC() + 4
		c.SetPC(c.PC() + JImm(instr))
		c.WriteReg(Rd(instr), link)
		return true
	},
}

var descJalr = &Descriptor{
	Name: "jalr",
	Mask: mask(true, true, false, false, false, false),
	Bits: 0b1100111,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("jalr %s, %s", regName(Rd(instr)), memOperand(int64(IImm(instr)), Rs1(instr)))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		// The return address must be captured before PC is overwritten:
		// jalr x1, x1, 0 is well-defined per spec.md §4.D.
		link := c.PC() + 4
		target := (c.ReadReg(Rs1(instr)) + IImm(instr)) &^ 1
		c.SetPC(target)
		c.WriteReg(Rd(instr), link)
		return true
	},
}

// branchDesc builds a conditional branch descriptor for funct3 f3,
// mnemonic name, and comparator cmp(rs1, rs2) -> taken.
func branchDesc(name string, f3 uint32, cmp func(rs1, rs2 uint64) bool) *Descriptor {
	return &Descriptor{
		Name: name,
		Mask: mask(true, true, false, false, false, false),
		Bits: f3<<12 | 0b1100011,
		Disassemble: func(instr uint32) string {
			return fmt.Sprintf("%s %s, %s, %s", name, regName(Rs1(instr)), regName(Rs2(instr)), immHex(int64(BImm(instr))))
		},
		Execute: func(c *cpu.CPU, instr uint32) bool {
			rs1 := c.ReadReg(Rs1(instr))
			rs2 := c.ReadReg(Rs2(instr))
			if cmp(rs1, rs2) {
				c.SetPC(c.PC() + BImm(instr))
				return true
			}
			return false
		},
	}
}

var descBeq = branchDesc("beq", 0b000, func(a, b uint64) bool { return a == b })
var descBne = branchDesc("bne", 0b001, func(a, b uint64) bool { return a != b })
var descBlt = branchDesc("blt", 0b100, func(a, b uint64) bool { return int64(a) < int64(b) })
var descBge = branchDesc("bge", 0b101, func(a, b uint64) bool { return int64(a) >= int64(b) })
var descBltu = branchDesc("bltu", 0b110, func(a, b uint64) bool { return a < b })
var descBgeu = branchDesc("bgeu", 0b111, func(a, b uint64) bool { return a >= b })
