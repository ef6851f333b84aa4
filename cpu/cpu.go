// Package cpu owns the architectural state of a single RISC-V hart: the
// integer register file, the program counter, the retirement statistics,
// the configuration bitset, and the host-services vector the kernel
// dispatch loop reads and writes through.
package cpu

import (
	"fmt"
	"sync/atomic"
)

// Signal is an out-of-band event a host may deliver to a running CPU from
// a thread other than the one executing Run.
type Signal int

// Halt requests that the CPU stop after the instruction currently
// in-flight retires.
const Halt Signal = iota

// Config is a bitset of recognized kernel configuration flags.
type Config uint32

const (
	// ConfigNone is the default configuration: no special features.
	ConfigNone Config = 0
	// ConfigTraceLog requests a per-step trace record via Services.LogTrace.
	ConfigTraceLog Config = 1 << 0
)

// Stats holds the five monotonic event counters spec.md §3 requires.
// Miss counters are always zero in this kernel; they are reserved for
// cache-bearing kernels built on top of this one.
type Stats struct {
	Instructions uint64
	Loads        uint64
	Stores       uint64
	LoadMisses   uint64
	StoreMisses  uint64
}

// Services is the host-supplied callback vector. Every field must be
// non-nil after Init; all calls are treated as total and infallible.
// Panic is the sole fatal exit from the kernel and is never expected to
// return, though the kernel tolerates it doing so.
type Services struct {
	Load8   func(addr uint64) uint8
	Load16  func(addr uint64) uint16
	Load32  func(addr uint64) uint32
	Load64  func(addr uint64) uint64
	Store8  func(addr uint64, v uint8)
	Store16 func(addr uint64, v uint16)
	Store32 func(addr uint64, v uint32)
	Store64 func(addr uint64, v uint64)

	LogTrace func(step uint64, pc uint64, regs [32]uint64)
	LogMsg   func(msg string)
	Panic    func(msg string)
}

// CPU is the complete architectural state of one hart. The kernel package
// owns stepping it; descriptors in the isa package read and write it
// through the exported accessors below.
type CPU struct {
	regs [32]uint64
	pc   uint64

	stats  Stats
	config Config

	// running is read from the run loop between retires and written from
	// ProcessSignal, which may be called from any goroutine; it is the
	// only state in this struct a host may touch concurrently with Run.
	running atomic.Bool

	services Services
	bound    bool
}

// New allocates a zeroed CPU. Host code normally calls Init immediately
// afterward; New never fails because it performs no host-visible work.
func New() *CPU {
	return &CPU{}
}

// Init binds the host-services vector and resets all architectural state:
// registers, PC, and stats are zeroed, configuration reverts to
// ConfigNone, and running is cleared. A nil CPU allocates fresh storage
// and returns it, per spec.md §4.B; Go's runtime allocator has no
// recoverable failure mode, so the "allocation failure" branch of that
// contract is unreachable here and is not modeled.
func Init(c *CPU, services Services) *CPU {
	if c == nil {
		c = &CPU{}
	}

	c.regs = [32]uint64{}
	c.pc = 0
	c.stats = Stats{}
	c.config = ConfigNone
	c.running.Store(false)
	c.services = services
	c.bound = true

	return c
}

// ReadReg returns the value of register i. Register 0 always reads as
// zero. An index outside 0..31 is fatal and is reported through Panic.
func (c *CPU) ReadReg(i int) uint64 {
	if i < 0 || i > 31 {
		c.panicf("cpu: register index out of range: %d", i)
		return 0
	}
	if i == 0 {
		return 0
	}
	return c.regs[i]
}

// WriteReg sets register i to v. Writes to register 0 are silently
// discarded. An index outside 0..31 is fatal.
func (c *CPU) WriteReg(i int, v uint64) {
	if i < 0 || i > 31 {
		c.panicf("cpu: register index out of range: %d", i)
		return
	}
	if i == 0 {
		return
	}
	c.regs[i] = v
}

// Snapshot returns the full register array, with index 0 forced to zero,
// for use in trace records.
func (c *CPU) Snapshot() [32]uint64 {
	regs := c.regs
	regs[0] = 0
	return regs
}

// PC returns the current program counter.
func (c *CPU) PC() uint64 { return c.pc }

// SetPC sets the program counter verbatim; the kernel does not enforce
// alignment beyond whatever the host memory does.
func (c *CPU) SetPC(v uint64) { c.pc = v }

// ConfigGet returns the current configuration bitset.
func (c *CPU) ConfigGet() Config { return c.config }

// ConfigSet replaces the configuration bitset. Unrecognized bits are
// accepted and simply have no effect; this is an expected, recoverable
// condition per spec.md §7.
func (c *CPU) ConfigSet(flags Config) { c.config = flags }

// IsRunning reports whether the CPU is inside a run loop.
func (c *CPU) IsRunning() bool { return c.running.Load() }

// SetRunning sets or clears the running flag. The kernel's Run loop, the
// debugger, the API handlers and cmd/rviss all call it.
func (c *CPU) SetRunning(v bool) { c.running.Store(v) }

// ProcessSignal handles an out-of-band host signal. Safe to call from any
// goroutine; the run loop only observes the result between retires.
func (c *CPU) ProcessSignal(sig Signal) {
	switch sig {
	case Halt:
		c.running.Store(false)
	}
}

// FillStats copies the current statistics into out.
func (c *CPU) FillStats(out *Stats) { *out = c.stats }

// Stats returns a copy of the current statistics.
func (c *CPU) Stats() Stats { return c.stats }

// RetireInstruction increments the instruction counter. Called once per
// successful step by the kernel dispatch loop.
func (c *CPU) RetireInstruction() { c.stats.Instructions++ }

// CountLoad increments the load counter. The kernel counts every
// instruction fetch as a load, per spec.md §9's resolution of the
// fetches-vs-loads ambiguity.
func (c *CPU) CountLoad() { c.stats.Loads++ }

// CountStore increments the store counter.
func (c *CPU) CountStore() { c.stats.Stores++ }

// Load8/Load16/Load32/Load64 and Store8/Store16/Store32/Store64 are thin
// passes to the bound host callback. A CPU that was never bound via Init
// returns zero for loads and performs no-ops for stores, mirroring
// spec.md §4.B's "nil CPU" contract at the accessor level.
func (c *CPU) Load8(addr uint64) uint8 {
	if !c.bound {
		return 0
	}
	return c.services.Load8(addr)
}

func (c *CPU) Load16(addr uint64) uint16 {
	if !c.bound {
		return 0
	}
	return c.services.Load16(addr)
}

func (c *CPU) Load32(addr uint64) uint32 {
	if !c.bound {
		return 0
	}
	return c.services.Load32(addr)
}

func (c *CPU) Load64(addr uint64) uint64 {
	if !c.bound {
		return 0
	}
	return c.services.Load64(addr)
}

func (c *CPU) Store8(addr uint64, v uint8) {
	if !c.bound {
		return
	}
	c.services.Store8(addr, v)
}

func (c *CPU) Store16(addr uint64, v uint16) {
	if !c.bound {
		return
	}
	c.services.Store16(addr, v)
}

func (c *CPU) Store32(addr uint64, v uint32) {
	if !c.bound {
		return
	}
	c.services.Store32(addr, v)
}

func (c *CPU) Store64(addr uint64, v uint64) {
	if !c.bound {
		return
	}
	c.services.Store64(addr, v)
}

// LogTrace forwards a per-step trace record to the bound host callback.
// It is a no-op if the CPU was never bound.
func (c *CPU) LogTrace(step uint64) {
	if !c.bound || c.services.LogTrace == nil {
		return
	}
	c.services.LogTrace(step, c.pc, c.Snapshot())
}

// LogMsg forwards an informational message to the bound host callback.
func (c *CPU) LogMsg(msg string) {
	if !c.bound || c.services.LogMsg == nil {
		return
	}
	c.services.LogMsg(msg)
}

// panicf forwards a fatal error to the bound host callback, formatting
// the message with fmt.Sprintf semantics.
func (c *CPU) panicf(format string, args ...any) {
	c.Panic(fmt.Sprintf(format, args...))
}

// Panic forwards a fatal error message to the bound host panic callback.
// Per spec.md §7, the kernel never throws or unwinds across the host
// boundary: Panic is the only exit, and execution is expected to stop
// immediately after it is invoked (by the caller clearing running).
func (c *CPU) Panic(msg string) {
	if !c.bound || c.services.Panic == nil {
		return
	}
	c.services.Panic(msg)
}
