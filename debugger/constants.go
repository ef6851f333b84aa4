package debugger

// TUI Display Update Constants
const (
	// DisplayUpdateFrequency controls how often the TUI redraws its panels
	// during a continuous run (every N retired instructions), so a
	// long-running program's registers/disassembly stay visible instead of
	// freezing the screen until it halts.
	DisplayUpdateFrequency = 100
)

// Memory Display Constants
const (
	// MemoryDisplayRows is the number of rows shown in the memory hex dump
	// view.
	MemoryDisplayRows = 8

	// MemoryDisplayColumns is the number of bytes per row in the memory hex
	// dump view.
	MemoryDisplayColumns = 16
)

// Stack Display Constants (RV64: 8-byte words)
const (
	// StackDisplayWords is the default number of 64-bit words shown by
	// "info stack", starting at the stack pointer (x2).
	StackDisplayWords = 16

	// StackDisplayBytes is the total number of bytes shown by default
	// (16 words * 8 bytes).
	StackDisplayBytes = StackDisplayWords * 8

	// StackInspectionMaxOffset is the maximum word count a caller may
	// request via "info stack N", to keep a mistyped count from producing
	// an unbounded dump.
	StackInspectionMaxOffset = 64
)

// Register Display Constants
const (
	// RegisterGroupSize is the number of registers displayed per row in
	// the TUI register panel (32 GPRs laid out as 8 rows of 4).
	RegisterGroupSize = 4

	// RegisterViewRows is the fixed height of the register view panel:
	// 32/RegisterGroupSize register rows, a blank line, the pc line, the
	// stats line, plus borders.
	RegisterViewRows = 32/RegisterGroupSize + 5
)
