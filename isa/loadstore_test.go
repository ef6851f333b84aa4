package isa

import "testing"

func TestStoreLoadDoubleRoundTrip(t *testing.T) {
	c := newTestCPU(t)
	c.WriteReg(2, 0x2000)
	c.WriteReg(1, 0x77)

	sd := EncodeS(0b011, 0, 2, 1, 0b0100011)
	descSd.Execute(c, sd)

	ld := EncodeI(0b011, 0, 3, 2, 0b0000011)
	descLd.Execute(c, ld)

	if got := c.ReadReg(3); got != 0x77 {
		t.Fatalf("ld after sd = %#x, want 0x77", got)
	}
	if s := c.Stats(); s.Stores != 1 || s.Loads != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestLwSignExtends(t *testing.T) {
	c := newTestCPU(t)
	c.WriteReg(2, 0x3000)
	c.Store32(0x3000, 0xFFFFFFFF)
	lw := EncodeI(0b010, 0, 1, 2, 0b0000011)
	descLw.Execute(c, lw)
	if got := c.ReadReg(1); got != 0xFFFFFFFFFFFFFFFF {
		t.Fatalf("lw of -1 not sign-extended: %#x", got)
	}
}
