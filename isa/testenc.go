package isa

// Encoders below build instruction words for the six RISC-V formats. They
// are exported so both this package's own tests and other packages'
// end-to-end tests (kernel_test.go) can exercise the dispatch engine with
// concrete encodings instead of hand-assembled literals.

// EncodeR encodes an R-type instruction.
func EncodeR(funct7 uint32, funct3 uint32, rd, rs1, rs2 int, opcode uint32) uint32 {
	return funct7<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

// EncodeI encodes an I-type instruction. imm is the 12-bit field value
// (may be negative; only the low 12 bits are used).
func EncodeI(funct3 uint32, imm int32, rd, rs1 int, opcode uint32) uint32 {
	return (uint32(imm)&0xfff)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

// EncodeS encodes an S-type instruction.
func EncodeS(funct3 uint32, imm int32, rs1, rs2 int, opcode uint32) uint32 {
	u := uint32(imm) & 0xfff
	hi := (u >> 5) & 0x7f
	lo := u & 0x1f
	return hi<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | lo<<7 | opcode
}

// EncodeB encodes a B-type instruction. imm must be even.
func EncodeB(imm int32, funct3 uint32, rs1, rs2 int, opcode uint32) uint32 {
	u := uint32(imm) & 0x1fff
	b12 := (u >> 12) & 0x1
	b11 := (u >> 11) & 0x1
	b10_5 := (u >> 5) & 0x3f
	b4_1 := (u >> 1) & 0xf
	return b12<<31 | b10_5<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | b4_1<<8 | b11<<7 | opcode
}

// EncodeU encodes a U-type instruction. imm20 is the raw 20-bit upper
// immediate (as it appears shifted into bits [31:12]).
func EncodeU(imm20 uint32, rd int, opcode uint32) uint32 {
	return (imm20 << 12) | uint32(rd)<<7 | opcode
}

// EncodeJ encodes a J-type instruction. imm must be even.
func EncodeJ(imm int32, rd int, opcode uint32) uint32 {
	u := uint32(imm) & 0x1fffff
	b20 := (u >> 20) & 0x1
	b19_12 := (u >> 12) & 0xff
	b11 := (u >> 11) & 0x1
	b10_1 := (u >> 1) & 0x3ff
	return b20<<31 | b19_12<<12 | b11<<20 | b10_1<<21 | uint32(rd)<<7 | opcode
}
