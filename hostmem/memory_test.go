package hostmem

import "testing"

func TestRoundTrip64(t *testing.T) {
	m := NewDefault()
	m.Store64(DataStart, 0x1122334455667788)
	if got := m.Load64(DataStart); got != 0x1122334455667788 {
		t.Fatalf("load64 = %#x", got)
	}
}

func TestLittleEndian32(t *testing.T) {
	m := NewDefault()
	m.Store32(DataStart, 0x01020304)
	if got := m.Load8(DataStart); got != 0x04 {
		t.Fatalf("low byte = %#x, want 0x04 (little-endian)", got)
	}
}

func TestUnmappedAddressFaults(t *testing.T) {
	m := NewDefault()
	faulted := false
	m.OnFault = func(msg string) { faulted = true }
	m.Load32(0xFFFFFFFFFFFFFFFF)
	if !faulted {
		t.Fatal("expected fault callback for unmapped address")
	}
}

func TestWriteToReadOnlySegmentFaults(t *testing.T) {
	m := NewDefault()
	faulted := false
	m.OnFault = func(msg string) { faulted = true }
	m.Store8(CodeStart, 1)
	if !faulted {
		t.Fatal("expected fault callback for write to read-only code segment")
	}
}
