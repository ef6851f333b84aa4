package debugger

import (
	"testing"

	"github.com/riscv64-iss/kernel/cpu"
	"github.com/riscv64-iss/kernel/kernel"
)

func newTestKernel(t *testing.T) *kernel.Kernel {
	t.Helper()
	k := kernel.New()
	k.Init(cpu.Services{
		Load8:    func(uint64) uint8 { return 0 },
		Load16:   func(uint64) uint16 { return 0 },
		Load32:   func(uint64) uint32 { return 0 },
		Load64:   func(uint64) uint64 { return 0 },
		Store8:   func(uint64, uint8) {},
		Store16:  func(uint64, uint16) {},
		Store32:  func(uint64, uint32) {},
		Store64:  func(uint64, uint64) {},
		LogTrace: func(uint64, uint64, [32]uint64) {},
		LogMsg:   func(string) {},
		Panic:    func(string) {},
	})
	return k
}

func TestWatchpointManager_AddWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint(WatchWrite, "x6", 0, true, 6)

	if wp == nil {
		t.Fatal("AddWatchpoint returned nil")
	}

	if wp.ID != 1 {
		t.Errorf("Expected ID 1, got %d", wp.ID)
	}

	if wp.Type != WatchWrite {
		t.Errorf("Wrong watchpoint type: got %d, want %d", wp.Type, WatchWrite)
	}

	if wp.Expression != "x6" {
		t.Errorf("Expression = %s, want x6", wp.Expression)
	}

	if !wp.IsRegister {
		t.Error("Should be register watchpoint")
	}

	if !wp.Enabled {
		t.Error("Watchpoint should be enabled by default")
	}

	if wp.HitCount != 0 {
		t.Errorf("Initial hit count should be 0, got %d", wp.HitCount)
	}
}

func TestWatchpointManager_AddMultiple(t *testing.T) {
	wm := NewWatchpointManager()

	wp1 := wm.AddWatchpoint(WatchWrite, "x6", 0, true, 6)
	wp2 := wm.AddWatchpoint(WatchRead, "[0x20000]", 0x20000, false, 0)

	if wp1.ID == wp2.ID {
		t.Error("Watchpoint IDs should be unique")
	}

	if wm.Count() != 2 {
		t.Errorf("Expected 2 watchpoints, got %d", wm.Count())
	}
}

func TestWatchpointManager_DeleteWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint(WatchWrite, "x6", 0, true, 6)

	if err := wm.DeleteWatchpoint(wp.ID); err != nil {
		t.Fatalf("DeleteWatchpoint failed: %v", err)
	}

	if wm.GetWatchpoint(wp.ID) != nil {
		t.Error("Watchpoint not deleted")
	}

	if err := wm.DeleteWatchpoint(999); err == nil {
		t.Error("Expected error when deleting non-existent watchpoint")
	}
}

func TestWatchpointManager_EnableDisable(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint(WatchWrite, "x6", 0, true, 6)

	if err := wm.DisableWatchpoint(wp.ID); err != nil {
		t.Fatalf("DisableWatchpoint failed: %v", err)
	}
	if wp.Enabled {
		t.Error("Watchpoint not disabled")
	}

	if err := wm.EnableWatchpoint(wp.ID); err != nil {
		t.Fatalf("EnableWatchpoint failed: %v", err)
	}
	if !wp.Enabled {
		t.Error("Watchpoint not enabled")
	}
}

func TestWatchpointManager_CheckWatchpoints_Register(t *testing.T) {
	wm := NewWatchpointManager()
	k := newTestKernel(t)

	wp := wm.AddWatchpoint(WatchWrite, "x6", 0, true, 6)

	k.RegSet(6, 100)
	if err := wm.InitializeWatchpoint(wp.ID, k, nil); err != nil {
		t.Fatalf("InitializeWatchpoint failed: %v", err)
	}

	if wp.LastValue != 100 {
		t.Errorf("LastValue = %d, want 100", wp.LastValue)
	}

	triggered, changed := wm.CheckWatchpoints(k, nil)
	if triggered != nil || changed {
		t.Error("Should not trigger when value hasn't changed")
	}

	k.RegSet(6, 200)
	triggered, changed = wm.CheckWatchpoints(k, nil)
	if triggered == nil || !changed {
		t.Fatal("Should trigger when value changes")
	}

	if triggered.ID != wp.ID {
		t.Errorf("Wrong watchpoint triggered: got %d, want %d", triggered.ID, wp.ID)
	}

	if wp.HitCount != 1 {
		t.Errorf("Hit count = %d, want 1", wp.HitCount)
	}

	if wp.LastValue != 200 {
		t.Errorf("LastValue not updated: got %d, want 200", wp.LastValue)
	}
}

func TestWatchpointManager_CheckWatchpoints_Memory(t *testing.T) {
	wm := NewWatchpointManager()
	k := newTestKernel(t)

	addr := uint64(0x20000)
	mem := map[uint64]uint64{addr: 0x12345678}
	memRead := func(a uint64) uint64 { return mem[a] }

	wp := wm.AddWatchpoint(WatchWrite, "[0x20000]", addr, false, 0)

	if err := wm.InitializeWatchpoint(wp.ID, k, memRead); err != nil {
		t.Fatalf("InitializeWatchpoint failed: %v", err)
	}

	triggered, changed := wm.CheckWatchpoints(k, memRead)
	if triggered != nil || changed {
		t.Error("Should not trigger when value hasn't changed")
	}

	mem[addr] = 0xABCDEF00
	triggered, changed = wm.CheckWatchpoints(k, memRead)
	if triggered == nil || !changed {
		t.Fatal("Should trigger when value changes")
	}

	if triggered.ID != wp.ID {
		t.Errorf("Wrong watchpoint triggered: got %d, want %d", triggered.ID, wp.ID)
	}
}

func TestWatchpointManager_Disabled(t *testing.T) {
	wm := NewWatchpointManager()
	k := newTestKernel(t)

	wp := wm.AddWatchpoint(WatchWrite, "x6", 0, true, 6)
	_ = wm.InitializeWatchpoint(wp.ID, k, nil)
	_ = wm.DisableWatchpoint(wp.ID)

	k.RegSet(6, 100)

	triggered, _ := wm.CheckWatchpoints(k, nil)
	if triggered != nil {
		t.Error("Disabled watchpoint should not trigger")
	}
}

func TestWatchpointManager_GetAllWatchpoints(t *testing.T) {
	wm := NewWatchpointManager()

	wm.AddWatchpoint(WatchWrite, "x6", 0, true, 6)
	wm.AddWatchpoint(WatchRead, "x7", 0, true, 7)
	wm.AddWatchpoint(WatchReadWrite, "[0x20000]", 0x20000, false, 0)

	all := wm.GetAllWatchpoints()

	if len(all) != 3 {
		t.Errorf("Expected 3 watchpoints, got %d", len(all))
	}
}

func TestWatchpointManager_Clear(t *testing.T) {
	wm := NewWatchpointManager()

	wm.AddWatchpoint(WatchWrite, "x6", 0, true, 6)
	wm.AddWatchpoint(WatchRead, "x7", 0, true, 7)

	wm.Clear()

	if wm.Count() != 0 {
		t.Errorf("Expected 0 watchpoints after clear, got %d", wm.Count())
	}
}

func TestWatchpoint_Types(t *testing.T) {
	wm := NewWatchpointManager()

	wpWrite := wm.AddWatchpoint(WatchWrite, "x6", 0, true, 6)
	wpRead := wm.AddWatchpoint(WatchRead, "x7", 0, true, 7)
	wpAccess := wm.AddWatchpoint(WatchReadWrite, "x8", 0, true, 8)

	if wpWrite.Type != WatchWrite {
		t.Error("Wrong type for write watchpoint")
	}

	if wpRead.Type != WatchRead {
		t.Error("Wrong type for read watchpoint")
	}

	if wpAccess.Type != WatchReadWrite {
		t.Error("Wrong type for access watchpoint")
	}
}
