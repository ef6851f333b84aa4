// Package debugger is an interactive front end for the kernel: a
// gdb-style command set plus a tcell/tview TUI, wrapping a kernel.Kernel
// the way the teacher emulator wraps its own VM.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riscv64-iss/kernel/cpu"
	"github.com/riscv64-iss/kernel/kernel"
)

// StepMode represents different stepping modes
type StepMode int

const (
	StepNone   StepMode = iota // Not stepping
	StepSingle                 // Step one instruction
	StepOver                   // Step over function calls (jal/jalr)
	StepOut                    // Step out of the current call
)

// Debugger holds the interactive debugging state layered on top of a
// Kernel. Memory is optional: without it, "examine"/"set *addr" commands
// report an error but register and control-flow commands still work.
type Debugger struct {
	Kernel   *kernel.Kernel
	Memory   MemoryAccess
	Services cpu.Services // retained so "reset" can re-Init the kernel

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory

	// ShowRegisters mirrors Config.Debugger.ShowRegisters: when false,
	// "info registers" reports that register display is disabled instead
	// of dumping the file, while "print <reg>" still works.
	ShowRegisters bool

	Running           bool
	StepMode          StepMode
	StepOverCallDepth int
	StepOverPC        uint64

	Symbols map[string]uint64

	LastCommand string

	Output strings.Builder
}

// MemoryAccess is the narrow interface the debugger needs from a host
// memory implementation (hostmem.Memory satisfies it) to examine and
// patch program state outside registers.
type MemoryAccess interface {
	Load8(addr uint64) uint8
	Load32(addr uint64) uint32
	Load64(addr uint64) uint64
	Store32(addr uint64, v uint32)
}

// NewDebugger creates a new debugger instance wrapping k, already bound via
// k.Init(services). services is retained so "reset" can re-Init the kernel.
// mem may be nil. History is bounded at the default capacity; callers that
// have a loaded Config should use NewDebuggerWithConfig instead.
func NewDebugger(k *kernel.Kernel, services cpu.Services, mem MemoryAccess) *Debugger {
	return NewDebuggerWithConfig(k, services, mem, defaultHistorySize, true)
}

// NewDebuggerWithConfig creates a debugger instance whose command history
// capacity and register-display default come from a loaded
// Config.Debugger section (historySize from HistorySize, showRegisters from
// ShowRegisters), instead of the package defaults NewDebugger uses.
func NewDebuggerWithConfig(k *kernel.Kernel, services cpu.Services, mem MemoryAccess, historySize int, showRegisters bool) *Debugger {
	return &Debugger{
		Kernel:        k,
		Memory:        mem,
		Services:      services,
		Breakpoints:   NewBreakpointManager(),
		Watchpoints:   NewWatchpointManager(),
		History:       NewCommandHistoryWithCapacity(historySize),
		ShowRegisters: showRegisters,
		Running:       false,
		StepMode:      StepNone,
		Symbols:       make(map[string]uint64),
	}
}

// LoadSymbols loads the symbol table for label resolution
func (d *Debugger) LoadSymbols(symbols map[string]uint64) {
	d.Symbols = symbols
}

// ResolveAddress resolves a label to an address, or parses a numeric address
func (d *Debugger) ResolveAddress(addrStr string) (uint64, error) {
	if addr, exists := d.Symbols[addrStr]; exists {
		return addr, nil
	}

	var addr uint64
	var err error
	if strings.HasPrefix(addrStr, "0x") || strings.HasPrefix(addrStr, "0X") {
		addr, err = strconv.ParseUint(addrStr[2:], 16, 64)
	} else {
		addr, err = strconv.ParseUint(addrStr, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", addrStr)
	}
	return addr, nil
}

// ExecuteCommand processes and executes a debugger command
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	if cmdLine == "" {
		cmdLine = d.LastCommand
	}

	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	return d.handleCommand(cmd, args)
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)

	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	case "watch", "w":
		return d.cmdWatch(args)

	case "print", "p":
		return d.cmdPrint(args)
	case "x":
		return d.cmdExamine(args)
	case "info", "i":
		return d.cmdInfo(args)

	case "set":
		return d.cmdSet(args)

	case "reset":
		return d.cmdReset(args)

	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak checks if execution should pause at the current PC
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.Kernel.PcGet()

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"

	case StepOver:
		if pc == d.StepOverPC {
			d.StepMode = StepNone
			return true, "step over complete"
		}

	case StepOut:
		// No stop condition of its own: execution continues until a
		// breakpoint, watchpoint, halt or fault.
	}

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil {
		if !bp.Enabled {
			return false, ""
		}

		bp.HitCount++

		if bp.Temporary {
			_ = d.Breakpoints.DeleteBreakpoint(bp.ID)
		}

		return true, fmt.Sprintf("breakpoint %d", bp.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.Kernel, d.memRead); wp != nil && changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

func (d *Debugger) memRead(addr uint64) uint64 {
	if d.Memory == nil {
		return 0
	}
	return d.Memory.Load64(addr)
}

// GetOutput returns and clears the output buffer
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

// Printf writes formatted output to the output buffer
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}

// SetStepOver configures the debugger to step over a jal/jalr call.
func (d *Debugger) SetStepOver() {
	if d.Memory == nil {
		d.StepMode = StepSingle
		d.Running = true
		return
	}

	pc := d.Kernel.PcGet()
	instr := d.Memory.Load32(pc)

	const opcodeMask = 0x7f
	opcode := instr & opcodeMask
	isCall := opcode == 0b1101111 || opcode == 0b1100111 // jal or jalr

	if isCall {
		d.StepOverPC = pc + 4
		d.StepMode = StepOver
		d.Running = true
	} else {
		d.StepMode = StepSingle
		d.Running = true
	}
}

// SetStepOut configures the debugger to step out of the current call.
func (d *Debugger) SetStepOut() {
	d.StepMode = StepOut
	d.Running = true
}
