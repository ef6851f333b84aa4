package isa

import "testing"

func TestMulLowBits(t *testing.T) {
	c := newTestCPU(t)
	c.WriteReg(1, 6)
	c.WriteReg(2, 7)
	instr := EncodeR(0b0000001, 0b000, 3, 1, 2, 0b0110011)
	descMul.Execute(c, instr)
	if got := c.ReadReg(3); got != 42 {
		t.Fatalf("mul 6*7 = %d, want 42", got)
	}
}

func TestMulSignedNegative(t *testing.T) {
	c := newTestCPU(t)
	c.WriteReg(1, 0xFFFFFFFFFFFFFFFF) // -1
	c.WriteReg(2, 5)
	instr := EncodeR(0b0000001, 0b000, 3, 1, 2, 0b0110011)
	descMul.Execute(c, instr)
	if got := int64(c.ReadReg(3)); got != -5 {
		t.Fatalf("mul -1*5 = %d, want -5", got)
	}
}
