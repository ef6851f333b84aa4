package isa

import (
	"fmt"

	"github.com/riscv64-iss/kernel/cpu"
)

// ---------- RV64I register-immediate (opcode 0010011) ----------

var descAddi = &Descriptor{
	Name: "addi",
	Mask: mask(true, true, false, false, false, false),
	Bits: 0b0010011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("addi %s, %s, %s", regName(Rd(instr)), regName(Rs1(instr)), immHex(int64(IImm(instr))))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		rs1 := c.ReadReg(Rs1(instr))
		c.WriteReg(Rd(instr), rs1+IImm(instr))
		return false
	},
}

var descXori = &Descriptor{
	Name: "xori",
	Mask: mask(true, true, false, false, false, false),
	Bits: 0b100<<12 | 0b0010011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("xori %s, %s, %s", regName(Rd(instr)), regName(Rs1(instr)), immHex(int64(IImm(instr))))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		c.WriteReg(Rd(instr), c.ReadReg(Rs1(instr))^IImm(instr))
		return false
	},
}

var descOri = &Descriptor{
	Name: "ori",
	Mask: mask(true, true, false, false, false, false),
	Bits: 0b110<<12 | 0b0010011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("ori %s, %s, %s", regName(Rd(instr)), regName(Rs1(instr)), immHex(int64(IImm(instr))))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		c.WriteReg(Rd(instr), c.ReadReg(Rs1(instr))|IImm(instr))
		return false
	},
}

var descAndi = &Descriptor{
	Name: "andi",
	Mask: mask(true, true, false, false, false, false),
	Bits: 0b111<<12 | 0b0010011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("andi %s, %s, %s", regName(Rd(instr)), regName(Rs1(instr)), immHex(int64(IImm(instr))))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		c.WriteReg(Rd(instr), c.ReadReg(Rs1(instr))&IImm(instr))
		return false
	},
}

// slli/srli/srai match on opcode, funct3, and the high 6 bits of funct7
// (f7[6:1] in spec.md §4.D); the low bit of that field is part of shamt6
// and must stay unmasked so any shift amount matches.
const shiftImmMask = 0x7f | 0x7000 | 0xfc000000

var descSlli = &Descriptor{
	Name: "slli",
	Mask: shiftImmMask,
	Bits: 0b001<<12 | 0b0010011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("slli %s, %s, %#x", regName(Rd(instr)), regName(Rs1(instr)), Shamt6(instr))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		c.WriteReg(Rd(instr), c.ReadReg(Rs1(instr))<<Shamt6(instr))
		return false
	},
}

var descSrli = &Descriptor{
	Name: "srli",
	Mask: shiftImmMask,
	Bits: 0b101<<12 | 0b0010011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("srli %s, %s, %#x", regName(Rd(instr)), regName(Rs1(instr)), Shamt6(instr))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		c.WriteReg(Rd(instr), c.ReadReg(Rs1(instr))>>Shamt6(instr))
		return false
	},
}

var descSrai = &Descriptor{
	Name: "srai",
	Mask: shiftImmMask,
	Bits: 0b010000<<26 | 0b101<<12 | 0b0010011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("srai %s, %s, %#x", regName(Rd(instr)), regName(Rs1(instr)), Shamt6(instr))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		rs1 := int64(c.ReadReg(Rs1(instr)))
		c.WriteReg(Rd(instr), uint64(rs1>>Shamt6(instr)))
		return false
	},
}

// ---------- RV64I register-register (opcode 0110011) ----------

var descAdd = &Descriptor{
	Name: "add",
	Mask: mask(true, true, true, false, false, false),
	Bits: 0b0110011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("add %s, %s, %s", regName(Rd(instr)), regName(Rs1(instr)), regName(Rs2(instr)))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		c.WriteReg(Rd(instr), c.ReadReg(Rs1(instr))+c.ReadReg(Rs2(instr)))
		return false
	},
}

var descSub = &Descriptor{
	Name: "sub",
	Mask: mask(true, true, true, false, false, false),
	Bits: 0b0100000<<25 | 0b0110011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("sub %s, %s, %s", regName(Rd(instr)), regName(Rs1(instr)), regName(Rs2(instr)))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		c.WriteReg(Rd(instr), c.ReadReg(Rs1(instr))-c.ReadReg(Rs2(instr)))
		return false
	},
}

var descSll = &Descriptor{
	Name: "sll",
	Mask: mask(true, true, true, false, false, false),
	Bits: 0b001<<12 | 0b0110011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("sll %s, %s, %s", regName(Rd(instr)), regName(Rs1(instr)), regName(Rs2(instr)))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		shamt := c.ReadReg(Rs2(instr)) & 0x3f
		c.WriteReg(Rd(instr), c.ReadReg(Rs1(instr))<<shamt)
		return false
	},
}

var descSrl = &Descriptor{
	Name: "srl",
	Mask: mask(true, true, true, false, false, false),
	Bits: 0b101<<12 | 0b0110011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("srl %s, %s, %s", regName(Rd(instr)), regName(Rs1(instr)), regName(Rs2(instr)))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		shamt := c.ReadReg(Rs2(instr)) & 0x3f
		c.WriteReg(Rd(instr), c.ReadReg(Rs1(instr))>>shamt)
		return false
	},
}

var descSra = &Descriptor{
	Name: "sra",
	Mask: mask(true, true, true, false, false, false),
	Bits: 0b0100000<<25 | 0b101<<12 | 0b0110011,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("sra %s, %s, %s", regName(Rd(instr)), regName(Rs1(instr)), regName(Rs2(instr)))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		shamt := c.ReadReg(Rs2(instr)) & 0x3f
		rs1 := int64(c.ReadReg(Rs1(instr)))
		c.WriteReg(Rd(instr), uint64(rs1>>shamt))
		return false
	},
}

// ---------- RV64I upper-immediate (opcode 0110111) ----------

var descLui = &Descriptor{
	Name: "lui",
	Mask: mask(true, false, false, false, false, false),
	Bits: 0b0110111,
	Disassemble: func(instr uint32) string {
		return fmt.Sprintf("lui %s, %s", regName(Rd(instr)), immHex(int64(UImmU(instr))>>12))
	},
	Execute: func(c *cpu.CPU, instr uint32) bool {
		c.WriteReg(Rd(instr), UImm(instr))
		return false
	},
}
