package isa

import "fmt"

// regName renders a register operand per spec.md §6: "x<decimal>".
func regName(i int) string { return fmt.Sprintf("x%d", i) }

// immHex renders an immediate per spec.md §6's disassembly format
// contract: non-negative immediates as hex with a 0x prefix, negative
// signed immediates as decimal with a leading minus.
func immHex(v int64) string {
	if v < 0 {
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("%#x", v)
}

// memOperand renders a load/store memory operand: imm(xN).
func memOperand(imm int64, base int) string {
	return fmt.Sprintf("%s(%s)", immHex(imm), regName(base))
}

// mask builds a 32-bit mask from the field selectors of spec.md §4.A.
// Bits outside the requested fields are zero.
func mask(opcode, funct3, funct7, rs1, rs2, rd bool) uint32 {
	var m uint32
	if opcode {
		m |= 0x7f
	}
	if rd {
		m |= 0xf80
	}
	if funct3 {
		m |= 0x7000
	}
	if rs1 {
		m |= 0xf8000
	}
	if rs2 {
		m |= 0x1f00000
	}
	if funct7 {
		m |= 0xfe000000
	}
	return m
}
