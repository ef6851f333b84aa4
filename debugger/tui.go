package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/riscv64-iss/kernel/cpu"
	"github.com/riscv64-iss/kernel/kernel"
)

// TUI is the text user interface for the debugger.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	RegisterView    *tview.TextView
	MemoryView      *tview.TextView
	DisassemblyView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	MemoryAddress uint64
}

// NewTUI creates a new text user interface over a real terminal screen.
func NewTUI(dbg *Debugger) *TUI {
	return newTUI(dbg, tview.NewApplication())
}

// NewTUIWithScreen creates a TUI bound to an explicit tcell.Screen, for
// tests that drive it against a simulation screen.
func NewTUIWithScreen(dbg *Debugger, screen tcell.Screen) *TUI {
	app := tview.NewApplication().SetScreen(screen)
	return newTUI(dbg, app)
}

func newTUI(dbg *Debugger, app *tview.Application) *TUI {
	tui := &TUI{
		Debugger: dbg,
		App:      app,
	}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()

	return tui
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true).SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 1, false)

	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, RegisterViewRows, 0, false).
		AddItem(t.MemoryView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 3, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

// handleCommand processes command input. It spawns the actual execution in
// a goroutine so the tview event loop never blocks on a long-running
// continue.
func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd == "" {
		return
	}
	t.CommandInput.SetText("")
	go t.executeCommand(cmd)
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	t.App.QueueUpdateDraw(func() {
		if err != nil {
			t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
		}
		if output != "" {
			t.WriteOutput(output)
		}
		t.refreshLocked()
	})

	if t.Debugger.Running {
		t.runUntilStopped()
	}
}

// runUntilStopped steps the kernel until it halts, faults, or a
// breakpoint/watchpoint fires, redrawing every DisplayUpdateFrequency
// steps so a long "continue"/"run" stays visible instead of freezing the
// screen until it stops.
func (t *TUI) runUntilStopped() {
	steps := 0
	for t.Debugger.Running {
		if shouldBreak, reason := t.Debugger.ShouldBreak(); shouldBreak {
			t.Debugger.Running = false
			t.App.QueueUpdateDraw(func() {
				t.WriteOutput(fmt.Sprintf("Stopped: %s at pc=%#016x\n", reason, t.Debugger.Kernel.PcGet()))
				t.refreshLocked()
			})
			return
		}

		result := t.Debugger.Kernel.Step()
		steps++

		switch result {
		case kernel.Halted:
			t.Debugger.Running = false
			t.App.QueueUpdateDraw(func() {
				t.WriteOutput("Program halted\n")
				t.refreshLocked()
			})
		case kernel.Fault:
			t.Debugger.Running = false
			t.App.QueueUpdateDraw(func() {
				t.WriteOutput("Runtime fault: unrecognized instruction\n")
				t.refreshLocked()
			})
		case kernel.NotRunning:
			t.Debugger.Running = false
		case kernel.Ran:
			if steps%DisplayUpdateFrequency == 0 {
				t.App.QueueUpdateDraw(t.refreshLocked)
			}
		}
	}
}

// WriteOutput writes to the output view
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll refreshes all view panels and redraws the application.
func (t *TUI) RefreshAll() {
	t.refreshLocked()
	t.App.Draw()
}

func (t *TUI) refreshLocked() {
	t.updateRegisterView()
	t.updateMemoryView()
	t.updateDisassemblyView()
	t.updateBreakpointsView()
}

func (t *TUI) updateRegisterView() {
	if !t.Debugger.ShowRegisters {
		t.RegisterView.SetText("[yellow]Register display disabled (debugger.show_registers=false)[white]")
		return
	}

	k := t.Debugger.Kernel
	var lines []string

	for row := 0; row < 32/RegisterGroupSize; row++ {
		var cols []string
		for col := 0; col < RegisterGroupSize; col++ {
			reg := row*RegisterGroupSize + col
			cols = append(cols, fmt.Sprintf("x%-2d: %#016x", reg, k.RegGet(reg)))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("pc: %#016x", k.PcGet()))

	var stats cpu.Stats
	k.StatsReport(&stats)
	lines = append(lines, fmt.Sprintf("instructions=%d loads=%d stores=%d", stats.Instructions, stats.Loads, stats.Stores))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateMemoryView() {
	t.MemoryView.Clear()

	if t.Debugger.Memory == nil {
		t.MemoryView.SetText("[yellow]No memory bound to this session[white]")
		return
	}

	addr := t.MemoryAddress
	if addr == 0 {
		addr = t.Debugger.Kernel.PcGet()
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]Address: %#016x[white]", addr))

	for row := 0; row < MemoryDisplayRows; row++ {
		rowAddr := addr + uint64(row*MemoryDisplayColumns)
		line := fmt.Sprintf("%#016x: ", rowAddr)
		var hexBytes []string
		for col := 0; col < MemoryDisplayColumns; col++ {
			b := t.Debugger.Memory.Load8(rowAddr + uint64(col))
			hexBytes = append(hexBytes, fmt.Sprintf("%02x", b))
		}
		line += strings.Join(hexBytes, " ")
		lines = append(lines, line)
	}

	t.MemoryView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateDisassemblyView() {
	t.DisassemblyView.Clear()

	if t.Debugger.Memory == nil {
		t.DisassemblyView.SetText("[yellow]No memory bound to this session[white]")
		return
	}

	pc := t.Debugger.Kernel.PcGet()
	var lines []string

	startAddr := pc
	if startAddr >= 32 {
		startAddr -= 32
	} else {
		startAddr = 0
	}

	for i := 0; i < 16; i++ {
		addr := startAddr + uint64(i*4)
		instr := t.Debugger.Memory.Load32(addr)

		marker, color := "  ", "white"
		if addr == pc {
			marker, color = "->", "yellow"
		}
		if t.Debugger.Breakpoints.GetBreakpoint(addr) != nil {
			marker = "* "
		}

		lines = append(lines, fmt.Sprintf("[%s]%s %s[white]", color, marker, t.Debugger.Kernel.Disasm(addr, instr)))
	}

	t.DisassemblyView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateBreakpointsView() {
	t.BreakpointsView.Clear()

	var lines []string

	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			status, color := "enabled", "green"
			if !bp.Enabled {
				status, color = "disabled", "red"
			}
			lines = append(lines, fmt.Sprintf("  %d: [%s]%s[white] %#016x (hits: %d)", bp.ID, color, status, bp.Address, bp.HitCount))
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := t.Debugger.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			lines = append(lines, fmt.Sprintf("  %d: %s = %#016x", wp.ID, wp.Expression, wp.LastValue))
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI application.
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]RISC-V Kernel Debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F10 to step over, F11 to step\n")
	t.WriteOutput("Type 'help' for command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI application.
func (t *TUI) Stop() {
	t.App.Stop()
}
