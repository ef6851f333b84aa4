package cpu

import "testing"

func testServices() Services {
	mem := make(map[uint64]uint64)
	return Services{
		Load8:   func(addr uint64) uint8 { return uint8(mem[addr]) },
		Load16:  func(addr uint64) uint16 { return uint16(mem[addr]) },
		Load32:  func(addr uint64) uint32 { return uint32(mem[addr]) },
		Load64:  func(addr uint64) uint64 { return mem[addr] },
		Store8:  func(addr uint64, v uint8) { mem[addr] = uint64(v) },
		Store16: func(addr uint64, v uint16) { mem[addr] = uint64(v) },
		Store32: func(addr uint64, v uint32) { mem[addr] = uint64(v) },
		Store64: func(addr uint64, v uint64) { mem[addr] = v },
		LogTrace: func(step uint64, pc uint64, regs [32]uint64) {
		},
		LogMsg: func(msg string) {},
		Panic:  func(msg string) { panic(msg) },
	}
}

func TestInitZeroesState(t *testing.T) {
	c := Init(nil, testServices())
	if c == nil {
		t.Fatal("Init returned nil")
	}
	for i := 0; i < 32; i++ {
		if c.ReadReg(i) != 0 {
			t.Fatalf("register %d not zeroed", i)
		}
	}
	if c.PC() != 0 {
		t.Fatalf("pc not zeroed: %x", c.PC())
	}
	if c.ConfigGet() != ConfigNone {
		t.Fatalf("config not reset")
	}
	if c.IsRunning() {
		t.Fatalf("running should start false")
	}
}

func TestRegisterZeroImmutable(t *testing.T) {
	c := Init(nil, testServices())
	c.WriteReg(0, 0xdeadbeef)
	if c.ReadReg(0) != 0 {
		t.Fatalf("x0 write should be a no-op, got %x", c.ReadReg(0))
	}
}

func TestRegisterReadWrite(t *testing.T) {
	c := Init(nil, testServices())
	c.WriteReg(5, 42)
	if got := c.ReadReg(5); got != 42 {
		t.Fatalf("x5 = %d, want 42", got)
	}
}

func TestRegisterOutOfRangePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for out-of-range register")
		}
	}()
	c := Init(nil, testServices())
	c.ReadReg(32)
}

func TestMemoryRoundTrip(t *testing.T) {
	c := Init(nil, testServices())
	c.Store64(0x1000, 0x1122334455667788)
	if got := c.Load64(0x1000); got != 0x1122334455667788 {
		t.Fatalf("load64 = %x, want 0x1122334455667788", got)
	}
}

func TestProcessSignalHalt(t *testing.T) {
	c := Init(nil, testServices())
	c.SetRunning(true)
	c.ProcessSignal(Halt)
	if c.IsRunning() {
		t.Fatal("expected running to clear after halt signal")
	}
}

func TestStatsMonotonic(t *testing.T) {
	c := Init(nil, testServices())
	c.RetireInstruction()
	c.CountLoad()
	c.CountStore()
	var s Stats
	c.FillStats(&s)
	if s.Instructions != 1 || s.Loads != 1 || s.Stores != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.LoadMisses != 0 || s.StoreMisses != 0 {
		t.Fatalf("miss counters must remain zero, got %+v", s)
	}
}

func TestUnboundCPUIsInert(t *testing.T) {
	c := New()
	if c.Load64(0) != 0 {
		t.Fatal("unbound load should return zero")
	}
	c.Store64(0, 1) // must not panic
}
