package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/riscv64-iss/kernel/kernel"
)

// RunCLI runs the line-oriented debugger interface.
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(rviss) ")

		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())

		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}

		if dbg.Running {
			for dbg.Running {
				if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
					dbg.Running = false
					fmt.Printf("Stopped: %s at pc=%#016x\n", reason, dbg.Kernel.PcGet())
					break
				}

				result := dbg.Kernel.Step()
				switch result {
				case kernel.Halted:
					dbg.Running = false
					fmt.Println("Program halted")
				case kernel.Fault:
					dbg.Running = false
					fmt.Println("Runtime fault: unrecognized instruction")
				case kernel.NotRunning:
					dbg.Running = false
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}

// RunTUI runs the tcell/tview debugger interface.
func RunTUI(dbg *Debugger) error {
	tui := NewTUI(dbg)
	return tui.Run()
}
