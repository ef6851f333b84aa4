package isa

import "testing"

func TestIsEbreakExactMatch(t *testing.T) {
	ebreak := uint32(0b000000000001<<20 | 0b1110011)
	if !IsEbreak(ebreak) {
		t.Fatal("expected exact ebreak encoding to match")
	}
	if IsEbreak(ebreak | (1 << 7)) { // rd != 0
		t.Fatal("ebreak match must require rd == 0")
	}
}

func TestEbreakExecuteHalts(t *testing.T) {
	c := newTestCPU(t)
	c.SetRunning(true)
	descEbreak.Execute(c, 0b000000000001<<20|0b1110011)
	if c.IsRunning() {
		t.Fatal("ebreak execute should clear running")
	}
}
