// Package kernel implements the fetch/dispatch loop (spec.md §4.E) and
// the stable, versioned host-facing API (spec.md §6) that wraps the cpu
// and isa packages into a single embeddable RISC-V ISS kernel.
package kernel

import (
	"fmt"

	"github.com/riscv64-iss/kernel/cpu"
	"github.com/riscv64-iss/kernel/isa"
)

// APIVersion is the stable host-facing API version this package
// implements.
const APIVersion = "1.0"

// StepResult reports the outcome of a single Step call.
type StepResult int

const (
	// Ran means one instruction retired normally.
	Ran StepResult = iota
	// NotRunning means Step was called while the CPU was not running.
	NotRunning
	// Halted means the fetched word was ebreak. A halt signal clears the
	// running flag instead, so the next Step reports NotRunning.
	Halted
	// Fault means the fetched word matched no registered descriptor.
	Fault
)

func (r StepResult) String() string {
	switch r {
	case Ran:
		return "ran"
	case NotRunning:
		return "not running"
	case Halted:
		return "halted"
	case Fault:
		return "fault"
	default:
		return "unknown"
	}
}

// Kernel is a single RISC-V hart: CPU architectural state plus the
// instruction registry it dispatches through. A Kernel is the handle the
// host-facing API in this package operates on; spec.md §9 rejects any
// process-global "current CPU" singleton in favor of this explicit
// handle.
type Kernel struct {
	CPU      *cpu.CPU
	Registry *isa.Registry
	steps    uint64
}

// New allocates a Kernel with the default instruction registry
// (isa.Default) and an unbound CPU. Call Init before stepping.
func New() *Kernel {
	return &Kernel{
		CPU:      cpu.New(),
		Registry: isa.Default(),
	}
}

// Info returns a list of "key=value" tags describing the kernel, per
// spec.md §6. At minimum it reports the API version.
func (k *Kernel) Info() []string {
	return []string{
		"api=" + APIVersion,
		fmt.Sprintf("instructions=%d", k.Registry.Len()),
	}
}

// Init binds host services and resets all CPU state.
func (k *Kernel) Init(services cpu.Services) {
	k.CPU = cpu.Init(k.CPU, services)
	k.steps = 0
}

// ConfigSet sets the recognized configuration flags.
func (k *Kernel) ConfigSet(flags cpu.Config) { k.CPU.ConfigSet(flags) }

// ConfigGet returns the current configuration flags.
func (k *Kernel) ConfigGet() cpu.Config { return k.CPU.ConfigGet() }

// StatsReport fills out with the current performance counters.
func (k *Kernel) StatsReport(out *cpu.Stats) { k.CPU.FillStats(out) }

// RegGet returns register i. An out-of-range index is fatal, surfaced
// through the bound panic callback.
func (k *Kernel) RegGet(i int) uint64 { return k.CPU.ReadReg(i) }

// RegSet sets register i.
func (k *Kernel) RegSet(i int, v uint64) { k.CPU.WriteReg(i, v) }

// PcGet returns the program counter.
func (k *Kernel) PcGet() uint64 { return k.CPU.PC() }

// PcSet sets the program counter.
func (k *Kernel) PcSet(v uint64) { k.CPU.SetPC(v) }

// Running reports whether the CPU is inside a run loop.
func (k *Kernel) Running() bool { return k.CPU.IsRunning() }

// Signal delivers an out-of-band host signal. Safe to call from any
// goroutine while Run executes on another, per spec.md §5.
func (k *Kernel) Signal(sig cpu.Signal) { k.CPU.ProcessSignal(sig) }

// Disasm decodes the instruction word instr fetched from address addr
// (addr is not used: branches and jumps show their PC-relative offset) into the
// format spec.md §6 specifies: "0x%.8x   mnemonic operands". Unknown
// encodings produce the literal "?".
func (k *Kernel) Disasm(addr uint64, instr uint32) string {
	d := k.Registry.Lookup(instr)
	if d == nil {
		return fmt.Sprintf("0x%.8x   ?", instr)
	}
	return fmt.Sprintf("0x%.8x   %s", instr, d.Disassemble(instr))
}

// Step executes exactly one fetch-decode-execute-retire cycle per the
// contract of spec.md §4.E.
func (k *Kernel) Step() StepResult {
	if !k.CPU.IsRunning() {
		return NotRunning
	}

	instr := k.CPU.Load32(k.CPU.PC())
	k.CPU.CountLoad() // instruction fetches count as loads, per spec.md §9

	if isa.IsEbreak(instr) {
		// PC is left pointing at the ebreak instruction itself (spec.md
		// §9's resolution of the PC-on-halt ambiguity); it still counts
		// as a retired instruction, matching the worked example in
		// spec.md §8 where a 3-instruction program (the last being
		// ebreak) reports instructions == 3.
		k.CPU.SetRunning(false)
		k.CPU.RetireInstruction()
		k.steps++
		if k.CPU.ConfigGet()&cpu.ConfigTraceLog != 0 {
			k.CPU.LogTrace(k.steps)
		}
		return Halted
	}

	d := k.Registry.Lookup(instr)
	if d == nil {
		k.CPU.Panic("unrecognized instruction")
		k.CPU.SetRunning(false)
		return Fault
	}

	pcWritten := d.Execute(k.CPU, instr)
	if !pcWritten {
		k.CPU.SetPC(k.CPU.PC() + 4)
	}

	k.CPU.RetireInstruction()
	k.steps++

	if k.CPU.ConfigGet()&cpu.ConfigTraceLog != 0 {
		k.CPU.LogTrace(k.steps)
	}

	return Ran
}

// Run executes instructions until either cycles have retired or the CPU
// halts, per spec.md §4.E. cycles == 0 means run until halt. It returns
// the number of instructions actually retired, including the halting
// ebreak if any.
func (k *Kernel) Run(cycles int) int {
	k.CPU.SetRunning(true)
	retired := 0

	for {
		if cycles > 0 && retired >= cycles {
			break
		}
		if !k.CPU.IsRunning() {
			break
		}

		result := k.Step()
		switch result {
		case Ran:
			retired++
		case Halted:
			retired++ // the halting ebreak itself counts as retired
			return retired
		case Fault, NotRunning:
			return retired
		}
	}

	return retired
}
