package isa

import "testing"

func TestFieldExtraction(t *testing.T) {
	// addi x6, x5, 0x23 : imm=0x023 rs1=5 f3=0 rd=6 opcode=0010011
	instr := uint32(0x023) <<20 | uint32(5)<<15 | uint32(0)<<12 | uint32(6)<<7 | 0x13
	if Opcode(instr) != 0x13 {
		t.Fatalf("opcode = %x", Opcode(instr))
	}
	if Rd(instr) != 6 {
		t.Fatalf("rd = %d", Rd(instr))
	}
	if Rs1(instr) != 5 {
		t.Fatalf("rs1 = %d", Rs1(instr))
	}
	if Funct3(instr) != 0 {
		t.Fatalf("funct3 = %d", Funct3(instr))
	}
	if IImm(instr) != 0x23 {
		t.Fatalf("iimm = %x", IImm(instr))
	}
}

func TestSignExtend(t *testing.T) {
	if got := SignExtend(0xfff, 11); got != 0xFFFFFFFFFFFFFFFF {
		t.Fatalf("sign extend -1(12bit) = %x", got)
	}
	if got := SignExtend(0x7ff, 11); got != 0x7ff {
		t.Fatalf("positive sign extend altered value: %x", got)
	}
}

func TestIImmNegative(t *testing.T) {
	// addi x1, x0, -1 : imm bits = 0xfff
	instr := uint32(0xfff)<<20 | uint32(0)<<15 | uint32(0)<<12 | uint32(1)<<7 | 0x13
	if IImm(instr) != 0xFFFFFFFFFFFFFFFF {
		t.Fatalf("IImm(-1) = %x", IImm(instr))
	}
}

func TestSImm(t *testing.T) {
	// sd x1, -8(x2): imm = -8 -> bits[11:5]=0x7f bits[4:0]=0x18
	imm := uint32(0xfff8) & 0xfff
	hi := (imm >> 5) & 0x7f
	lo := imm & 0x1f
	instr := hi<<25 | uint32(1)<<20 | uint32(2)<<15 | uint32(3)<<12 | lo<<7 | 0x23
	if got := int64(SImm(instr)); got != -8 {
		t.Fatalf("SImm = %d, want -8", got)
	}
}

func TestBImmForwardAndBackward(t *testing.T) {
	// Encode branch offset +8: imm[12]=0 imm[11]=0 imm[10:5]=0 imm[4:1]=0100
	var instr uint32
	instr |= 0 << 31          // imm[12]
	instr |= 0 << 25          // imm[10:5]
	instr |= (0b0100) << 8    // imm[4:1]
	instr |= 0 << 7           // imm[11]
	instr |= 0x63             // opcode
	if got := int64(BImm(instr)); got != 8 {
		t.Fatalf("BImm(+8) = %d", got)
	}
	back := EncodeB(-8, 0b000, 0, 0, 0x63)
	if got := int64(BImm(back)); got != -8 {
		t.Fatalf("BImm(-8) = %d", got)
	}
}

func TestUImm(t *testing.T) {
	// lui x6, 0x1: imm = 0x1 << 12 = 0x1000, sign bit clear
	instr := uint32(0x1)<<12 | uint32(6)<<7 | 0x37
	if got := UImm(instr); got != 0x1000 {
		t.Fatalf("UImm = %x", got)
	}
}

func TestJImm(t *testing.T) {
	// jal x1, +8: imm[20]=0 imm[19:12]=0 imm[11]=0 imm[10:1]=0000000100
	var instr uint32
	instr |= (0b0000000100) << 21
	instr |= 1 << 7
	instr |= 0x6f
	if got := int64(JImm(instr)); got != 8 {
		t.Fatalf("JImm(+8) = %d", got)
	}
}

func TestShamt(t *testing.T) {
	// srai x1, x1, 4 : shamt field = 4, select = 0x10 (arithmetic)
	instr := uint32(0b010000)<<26 | uint32(4)<<20 | uint32(1)<<15 | uint32(5)<<12 | uint32(1)<<7 | 0x13
	if Shamt6(instr) != 4 {
		t.Fatalf("shamt6 = %d", Shamt6(instr))
	}
	if ShiftSelect(instr) != 0x10 {
		t.Fatalf("shift select = %x", ShiftSelect(instr))
	}
}
