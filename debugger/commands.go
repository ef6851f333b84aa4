package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riscv64-iss/kernel/cpu"
)

// Command handler implementations

// cmdRun starts or restarts program execution
func (d *Debugger) cmdRun(args []string) error {
	d.Kernel.CPU.SetRunning(true)
	d.Running = true
	d.StepMode = StepNone

	d.Println("Starting program execution...")
	return nil
}

// cmdContinue continues execution from current point
func (d *Debugger) cmdContinue(args []string) error {
	if !d.Kernel.Running() {
		return fmt.Errorf("program is not running")
	}

	d.Running = true
	d.StepMode = StepNone

	d.Println("Continuing...")
	return nil
}

// cmdStep executes a single instruction
func (d *Debugger) cmdStep(args []string) error {
	d.Kernel.Step()
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdNext steps over jal/jalr calls
func (d *Debugger) cmdNext(args []string) error {
	d.SetStepOver()
	return nil
}

// cmdFinish enters StepOut mode, which has no stop condition of its own:
// execution runs until a breakpoint, watchpoint, halt or fault.
func (d *Debugger) cmdFinish(args []string) error {
	d.SetStepOut()
	return nil
}

// cmdBreak sets a breakpoint
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address|label> [if <condition>]")
	}

	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(address, false, condition)

	if condition != "" {
		d.Printf("Breakpoint %d at %#016x (condition: %s)\n", bp.ID, address, condition)
	} else {
		d.Printf("Breakpoint %d at %#016x\n", bp.ID, address)
	}

	return nil
}

// cmdTBreak sets a temporary breakpoint (auto-delete after hit)
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address|label>")
	}

	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	bp := d.Breakpoints.AddBreakpoint(address, true, "")
	d.Printf("Temporary breakpoint %d at %#016x\n", bp.ID, address)

	return nil
}

// cmdDelete deletes breakpoint(s)
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

// cmdEnable enables breakpoint(s)
func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

// cmdDisable disables breakpoint(s)
func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdWatch sets a watchpoint on a register, pc, or (with Memory wired) an
// address.
func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <register|pc|[address]>")
	}

	expression := strings.Join(args, " ")

	isRegister, register, address, err := d.parseWatchExpression(expression)
	if err != nil {
		return err
	}

	wp := d.Watchpoints.AddWatchpoint(WatchWrite, expression, address, isRegister, register)

	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.Kernel, d.memRead); err != nil {
		_ = d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}

	d.Printf("Watchpoint %d: %s\n", wp.ID, expression)
	return nil
}

// parseWatchExpression parses a watch expression: "pc", "x0".."x31", or a
// bracketed address "[0x...]".
func (d *Debugger) parseWatchExpression(expr string) (isRegister bool, register int, address uint64, err error) {
	expr = strings.ToLower(strings.TrimSpace(expr))

	if expr == "pc" {
		return true, -1, 0, nil
	}

	if strings.HasPrefix(expr, "x") {
		if n, scanErr := strconv.Atoi(expr[1:]); scanErr == nil && n >= 0 && n <= 31 {
			return true, n, 0, nil
		}
	}

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addrStr := strings.TrimSuffix(strings.TrimPrefix(expr, "["), "]")
		addr, err := d.ResolveAddress(addrStr)
		if err != nil {
			return false, 0, 0, err
		}
		return false, 0, addr, nil
	}

	return false, 0, 0, fmt.Errorf("invalid watch expression: %s", expr)
}

// cmdPrint evaluates and prints a register, pc, or memory expression.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <register|pc|[address]>")
	}

	expression := strings.Join(args, " ")
	isRegister, register, address, err := d.parseWatchExpression(expression)
	if err != nil {
		return err
	}

	var value uint64
	if isRegister {
		if register < 0 {
			value = d.Kernel.PcGet()
		} else {
			value = d.Kernel.RegGet(register)
		}
	} else {
		value = d.memRead(address)
	}

	d.Printf("%s = %#016x (%d)\n", expression, value, int64(value))
	return nil
}

// cmdExamine examines memory at an address
func (d *Debugger) cmdExamine(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: x[/n] <address>")
	}
	if d.Memory == nil {
		return fmt.Errorf("no memory bound to this debugger session")
	}

	count := 1
	addrArg := args[0]

	if strings.HasPrefix(args[0], "/") {
		if len(args) < 2 {
			return fmt.Errorf("missing address")
		}
		if n, err := strconv.Atoi(args[0][1:]); err == nil {
			count = n
		}
		addrArg = args[1]
	}

	address, err := d.ResolveAddress(addrArg)
	if err != nil {
		return err
	}

	d.Printf("%#016x:", address)
	for i := 0; i < count; i++ {
		value := d.Memory.Load32(address)
		d.Printf(" %#08x", value)
		address += 4
	}
	d.Println()

	return nil
}

// cmdInfo displays information about program state
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|breakpoints|watchpoints|stack>")
	}

	switch strings.ToLower(args[0]) {
	case "registers", "reg", "r":
		return d.showRegisters()
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "watchpoints", "watch", "w":
		return d.showWatchpoints()
	case "stack", "st":
		return d.showStack(args[1:])
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

// showStack dumps 64-bit words from the stack pointer (x2) upward.
// args[0], if given, overrides the word count (default StackDisplayWords),
// capped at StackInspectionMaxOffset.
func (d *Debugger) showStack(args []string) error {
	if d.Memory == nil {
		return fmt.Errorf("no memory bound to this debugger session")
	}

	count := StackDisplayWords
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid word count: %s", args[0])
		}
		if n > StackInspectionMaxOffset {
			n = StackInspectionMaxOffset
		}
		count = n
	}

	sp := d.Kernel.RegGet(2)
	d.Println("Stack:")
	for i := 0; i < count; i++ {
		addr := sp + uint64(i*8)
		marker := "  "
		if addr == sp {
			marker = "->"
		}
		d.Printf("  %s %#016x: %#016x\n", marker, addr, d.memRead(addr))
	}

	return nil
}

// showRegisters displays all register values and the statistics counters,
// unless Config.Debugger.ShowRegisters disabled the panel for this session.
func (d *Debugger) showRegisters() error {
	if !d.ShowRegisters {
		d.Println("Register display is disabled (debugger.show_registers=false); use 'print <reg>' for a single register.")
		return nil
	}

	d.Println("Registers:")
	for i := 0; i < 32; i++ {
		name := fmt.Sprintf("x%-2d", i)
		d.Printf("  %-4s = %#016x (%d)\n", name, d.Kernel.RegGet(i), int64(d.Kernel.RegGet(i)))
	}
	d.Printf("  pc   = %#016x\n", d.Kernel.PcGet())

	var stats cpu.Stats
	d.Kernel.StatsReport(&stats)
	d.Printf("  instructions=%d loads=%d stores=%d\n", stats.Instructions, stats.Loads, stats.Stores)

	return nil
}

// showBreakpoints displays all breakpoints
func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}

	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}

		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}

		condition := ""
		if bp.Condition != "" {
			condition = fmt.Sprintf(" if %s", bp.Condition)
		}

		d.Printf("  %d: %#016x %s%s%s (hit %d times)\n",
			bp.ID, bp.Address, status, temp, condition, bp.HitCount)
	}

	return nil
}

// showWatchpoints displays all watchpoints
func (d *Debugger) showWatchpoints() error {
	watchpoints := d.Watchpoints.GetAllWatchpoints()
	if len(watchpoints) == 0 {
		d.Println("No watchpoints")
		return nil
	}

	d.Println("Watchpoints:")
	for _, wp := range watchpoints {
		status := "enabled"
		if !wp.Enabled {
			status = "disabled"
		}

		d.Printf("  %d: %s %s (hit %d times, last value: %#016x)\n",
			wp.ID, wp.Expression, status, wp.HitCount, wp.LastValue)
	}

	return nil
}

// cmdSet modifies a register or a memory word
func (d *Debugger) cmdSet(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: set <register|*address> = <value>")
	}
	if args[1] != "=" {
		return fmt.Errorf("usage: set <register|*address> = <value>")
	}

	target := strings.ToLower(args[0])
	valueStr := args[2]

	value, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(valueStr, "0x"), "0X"), 16, 64)
	if err != nil {
		return fmt.Errorf("invalid value: %s", valueStr)
	}

	if strings.HasPrefix(target, "*") {
		if d.Memory == nil {
			return fmt.Errorf("no memory bound to this debugger session")
		}
		address, err := d.ResolveAddress(target[1:])
		if err != nil {
			return err
		}
		d.Memory.Store32(address, uint32(value))
		d.Printf("Memory %#016x set to %#08x\n", address, uint32(value))
		return nil
	}

	if target == "pc" {
		d.Kernel.PcSet(value)
		d.Printf("pc set to %#016x\n", value)
		return nil
	}

	if !strings.HasPrefix(target, "x") {
		return fmt.Errorf("invalid target: %s", target)
	}
	register, err := strconv.Atoi(target[1:])
	if err != nil || register < 0 || register > 31 {
		return fmt.Errorf("invalid register: %s", target)
	}

	d.Kernel.RegSet(register, value)
	d.Printf("Register %s set to %#016x\n", target, value)

	return nil
}

// cmdReset resets the kernel's CPU state. Host services stay bound.
func (d *Debugger) cmdReset(args []string) error {
	d.Kernel.Init(d.Services)
	d.Println("CPU reset")
	return nil
}

// cmdHelp displays help information
func (d *Debugger) cmdHelp(args []string) error {
	if len(args) > 0 {
		return d.showCommandHelp(args[0])
	}

	d.Println("RISC-V Kernel Debugger Commands:")
	d.Println()
	d.Println("Execution Control:")
	d.Println("  run (r)           - Start program execution")
	d.Println("  continue (c)      - Continue execution")
	d.Println("  step (s, si)      - Execute single instruction")
	d.Println("  next (n)          - Step over jal/jalr calls")
	d.Println("  finish (fin)      - Run until a breakpoint, watchpoint or halt")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <addr>  - Set breakpoint")
	d.Println("  tbreak (tb) <addr>- Set temporary breakpoint")
	d.Println("  delete (d) [id]   - Delete breakpoint(s)")
	d.Println("  enable <id>       - Enable breakpoint")
	d.Println("  disable <id>      - Disable breakpoint")
	d.Println()
	d.Println("Watchpoints:")
	d.Println("  watch (w) <expr>  - Watch a register, pc, or [address]")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <expr>  - Print a register, pc, or [address]")
	d.Println("  x[/n] <addr>      - Examine memory words")
	d.Println("  info (i) <what>   - Show information")
	d.Println()
	d.Println("Modification:")
	d.Println("  set <var> = <val> - Modify register/memory")
	d.Println()
	d.Println("Control:")
	d.Println("  reset             - Reset CPU state")
	d.Println("  help (h, ?)       - Show this help")
	d.Println()
	d.Println("Type 'help <command>' for detailed help on a specific command.")

	return nil
}

// showCommandHelp shows detailed help for a specific command
func (d *Debugger) showCommandHelp(cmd string) error {
	helpText := map[string]string{
		"break": "break <address|label> [if <condition>]\n  Set a breakpoint at the specified address or label.",
		"step":  "step\n  Execute a single instruction.",
		"next":  "next\n  Step over jal/jalr calls.",
		"print": "print <register|pc|[address]>\n  Print a register, the pc, or a memory word.",
		"x":     "x[/n] <address>\n  Examine n 32-bit words of memory.",
		"info":  "info <registers|breakpoints|watchpoints|stack>\n  Display information about program state.",
	}

	if help, exists := helpText[cmd]; exists {
		d.Println(help)
		return nil
	}

	return fmt.Errorf("no help available for command: %s", cmd)
}
