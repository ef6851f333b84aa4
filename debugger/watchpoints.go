package debugger

import (
	"fmt"
	"sync"

	"github.com/riscv64-iss/kernel/kernel"
)

// WatchType represents the type of watchpoint. The current implementation
// can only detect value changes, not specific read/write operations: all
// three types trigger identically, on any change from the last observed
// value. True read-only or write-only tracking would require instrumenting
// every load/store host callback rather than polling between steps.
type WatchType int

const (
	WatchWrite     WatchType = iota // Trigger on write (currently same as WatchReadWrite)
	WatchRead                       // Trigger on read (currently same as WatchReadWrite)
	WatchReadWrite                  // Trigger on read or write (value change detection)
)

// Watchpoint monitors a register, the PC, or (when a memory reader is
// wired) a host memory address for changes between steps.
type Watchpoint struct {
	ID         int
	Type       WatchType
	Expression string // e.g. "x6", "pc", "[0x20000]"
	Address    uint64 // resolved address for memory watchpoints
	IsRegister bool   // true if watching a register (Register == -1 means PC)
	Register   int
	Enabled    bool
	LastValue  uint64
	HitCount   int
}

// WatchpointManager manages all watchpoints
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointManager creates a new watchpoint manager
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{
		watchpoints: make(map[int]*Watchpoint),
		nextID:      1,
	}
}

// AddWatchpoint adds a new watchpoint
func (wm *WatchpointManager) AddWatchpoint(wpType WatchType, expression string, address uint64, isRegister bool, register int) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:         wm.nextID,
		Type:       wpType,
		Expression: expression,
		Address:    address,
		IsRegister: isRegister,
		Register:   register,
		Enabled:    true,
	}

	wm.watchpoints[wp.ID] = wp
	wm.nextID++

	return wp
}

// DeleteWatchpoint removes a watchpoint by ID
func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	delete(wm.watchpoints, id)
	return nil
}

// EnableWatchpoint enables a watchpoint by ID
func (wm *WatchpointManager) EnableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	wp.Enabled = true
	return nil
}

// DisableWatchpoint disables a watchpoint by ID
func (wm *WatchpointManager) DisableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	wp.Enabled = false
	return nil
}

// GetWatchpoint gets a watchpoint by ID
func (wm *WatchpointManager) GetWatchpoint(id int) *Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	return wm.watchpoints[id]
}

// GetAllWatchpoints returns all watchpoints
func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	result := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		result = append(result, wp)
	}

	return result
}

// readCurrent resolves the live value a watchpoint tracks. memRead is the
// host memory reader wired in by the caller; it may be nil, in which case
// non-register watchpoints are skipped rather than treated as changed.
func readCurrent(wp *Watchpoint, k *kernel.Kernel, memRead func(uint64) uint64) (uint64, bool) {
	if wp.IsRegister {
		if wp.Register < 0 {
			return k.PcGet(), true
		}
		return k.RegGet(wp.Register), true
	}
	if memRead == nil {
		return 0, false
	}
	return memRead(wp.Address), true
}

// CheckWatchpoints checks all watchpoints and returns the first that has
// changed since it was last observed.
func (wm *WatchpointManager) CheckWatchpoints(k *kernel.Kernel, memRead func(uint64) uint64) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}

		current, ok := readCurrent(wp, k, memRead)
		if !ok {
			continue
		}

		if current != wp.LastValue {
			wp.HitCount++
			wp.LastValue = current
			return wp, true
		}
	}

	return nil, false
}

// InitializeWatchpoint initializes the last value for a watchpoint
func (wm *WatchpointManager) InitializeWatchpoint(id int, k *kernel.Kernel, memRead func(uint64) uint64) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	current, ok := readCurrent(wp, k, memRead)
	if !ok {
		return fmt.Errorf("watchpoint %d: no memory reader wired for address watch", id)
	}
	wp.LastValue = current
	return nil
}

// Clear removes all watchpoints
func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wm.watchpoints = make(map[int]*Watchpoint)
}

// Count returns the number of watchpoints
func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	return len(wm.watchpoints)
}
