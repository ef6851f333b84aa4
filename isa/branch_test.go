package isa

import "testing"

func TestBltSignedVsBltuUnsigned(t *testing.T) {
	c := newTestCPU(t)
	c.WriteReg(1, 0xFFFFFFFFFFFFFFFF) // -1
	c.WriteReg(2, 0)

	blt := EncodeB(8, 0b100, 1, 2, 0b1100011)
	pc0 := c.PC()
	taken := descBlt.Execute(c, blt)
	if !taken {
		t.Fatal("blt -1,0 should be taken (signed compare)")
	}
	if c.PC() != pc0+8 {
		t.Fatalf("pc = %#x, want %#x", c.PC(), pc0+8)
	}

	c.SetPC(pc0)
	bltu := EncodeB(8, 0b110, 1, 2, 0b1100011)
	taken = descBltu.Execute(c, bltu)
	if taken {
		t.Fatal("bltu -1,0 should not be taken (unsigned compare)")
	}
}

func TestJalWritesLinkAndJumps(t *testing.T) {
	c := newTestCPU(t)
	c.SetPC(0x2000)
	instr := EncodeJ(8, 1, 0b1101111)
	taken := descJal.Execute(c, instr)
	if !taken {
		t.Fatal("jal must report pcWritten")
	}
	if c.ReadReg(1) != 0x2004 {
		t.Fatalf("link register = %#x, want 0x2004", c.ReadReg(1))
	}
	if c.PC() != 0x2008 {
		t.Fatalf("pc = %#x, want 0x2008", c.PC())
	}
}

func TestJalrClearsLowBitAndOrdersLinkBeforeWrite(t *testing.T) {
	c := newTestCPU(t)
	c.SetPC(0x3000)
	c.WriteReg(1, 0x4001) // target with low bit set

	instr := EncodeI(0b000, 0, 1, 1, 0b1100111) // jalr x1, x1, 0
	descJalr.Execute(c, instr)

	if c.PC() != 0x4000 {
		t.Fatalf("jalr target = %#x, want 0x4000 (low bit cleared)", c.PC())
	}
	if c.ReadReg(1) != 0x3004 {
		t.Fatalf("jalr x1,x1,0 must still capture the original return address, got %#x", c.ReadReg(1))
	}
}

func TestBranchNotTakenAdvancesByDefault(t *testing.T) {
	c := newTestCPU(t)
	c.WriteReg(1, 1)
	c.WriteReg(2, 2)
	instr := EncodeB(8, 0b000, 1, 2, 0b1100011) // beq, not equal
	taken := descBeq.Execute(c, instr)
	if taken {
		t.Fatal("beq of unequal registers should not be taken")
	}
}
