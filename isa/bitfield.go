// Package isa implements the RISC-V instruction dispatch engine: bitfield
// and immediate decoding, the descriptor/registry model, and the RV64I +
// RV64M semantic functions that read and write CPU state.
package isa

// Field extraction at the fixed positions the RISC-V encoding uses across
// every instruction format.

// Opcode returns bits [6:0].
func Opcode(instr uint32) uint32 { return instr & 0x7f }

// Rd returns the destination register index, bits [11:7].
func Rd(instr uint32) int { return int((instr >> 7) & 0x1f) }

// Funct3 returns bits [14:12].
func Funct3(instr uint32) uint32 { return (instr >> 12) & 0x7 }

// Rs1 returns the first source register index, bits [19:15].
func Rs1(instr uint32) int { return int((instr >> 15) & 0x1f) }

// Rs2 returns the second source register index, bits [24:20].
func Rs2(instr uint32) int { return int((instr >> 20) & 0x1f) }

// Funct7 returns bits [31:25].
func Funct7(instr uint32) uint32 { return (instr >> 25) & 0x7f }

// SignExtend replicates bit `bit` of v (0-indexed) across the rest of a
// 64-bit word. This is sx(·) from the GLOSSARY.
func SignExtend(v uint64, bit uint) uint64 {
	shift := 63 - bit
	return uint64(int64(v<<shift) >> shift)
}

// IImmU returns the unsigned I-type immediate: bits [31:20] -> imm[11:0].
func IImmU(instr uint32) uint64 { return uint64(instr>>20) & 0xfff }

// IImm returns the sign-extended I-type immediate.
func IImm(instr uint32) uint64 { return SignExtend(IImmU(instr), 11) }

// SImmU returns the unsigned S-type immediate: bits[31:25]->imm[11:5],
// bits[11:7]->imm[4:0].
func SImmU(instr uint32) uint64 {
	hi := (instr >> 25) & 0x7f
	lo := (instr >> 7) & 0x1f
	return uint64(hi<<5 | lo)
}

// SImm returns the sign-extended S-type immediate.
func SImm(instr uint32) uint64 { return SignExtend(SImmU(instr), 11) }

// BImmU returns the unsigned B-type immediate, already scaled (imm[0]=0):
// bit31->imm[12], bit7->imm[11], bits[30:25]->imm[10:5], bits[11:8]->imm[4:1].
func BImmU(instr uint32) uint64 {
	b12 := (instr >> 31) & 0x1
	b11 := (instr >> 7) & 0x1
	b10_5 := (instr >> 25) & 0x3f
	b4_1 := (instr >> 8) & 0xf
	return uint64(b12<<12 | b11<<11 | b10_5<<5 | b4_1<<1)
}

// BImm returns the sign-extended B-type immediate.
func BImm(instr uint32) uint64 { return SignExtend(BImmU(instr), 12) }

// UImmU returns the unsigned U-type immediate: bits[31:12]->imm[31:12],
// low 12 bits zero.
func UImmU(instr uint32) uint64 { return uint64(instr & 0xfffff000) }

// UImm returns the sign-extended U-type immediate (sign bit 31).
func UImm(instr uint32) uint64 { return SignExtend(UImmU(instr), 31) }

// JImmU returns the unsigned J-type immediate, already scaled (imm[0]=0):
// bit31->imm[20], bits[19:12]->imm[19:12], bit20->imm[11],
// bits[30:21]->imm[10:1].
func JImmU(instr uint32) uint64 {
	b20 := (instr >> 31) & 0x1
	b19_12 := (instr >> 12) & 0xff
	b11 := (instr >> 20) & 0x1
	b10_1 := (instr >> 21) & 0x3ff
	return uint64(b20<<20 | b19_12<<12 | b11<<11 | b10_1<<1)
}

// JImm returns the sign-extended J-type immediate.
func JImm(instr uint32) uint64 { return SignExtend(JImmU(instr), 20) }

// Shamt6 returns the low 6 bits of the I-immediate field, the shift
// amount for RV64 doubleword immediate shifts.
func Shamt6(instr uint32) uint {
	return uint((instr >> 20) & 0x3f)
}

// Shamt5 is the shift amount for RV64 word ("w") operations: the low 5
// bits of the I-immediate field.
func Shamt5(instr uint32) uint {
	return uint((instr >> 20) & 0x1f)
}

// ShiftSelect returns the funct7-derived high bits ([6:1] of funct7) that
// distinguish slli/srli from srai: 0b000000 for logical, 0b010000 for
// arithmetic.
func ShiftSelect(instr uint32) uint32 {
	return (instr >> 26) & 0x3f
}
