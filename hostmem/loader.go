package hostmem

import "os"

// Default segment layout for the reference host. ELF/HEX parsing is a
// spec.md Non-goal; programs are loaded as flat raw binaries at
// CodeStart.
const (
	CodeStart  = 0x00010000
	CodeSize   = 0x00010000
	DataStart  = 0x00020000
	DataSize   = 0x00010000
	StackStart = 0x00030000
	StackSize  = 0x00010000
	StackTop   = StackStart + StackSize
)

// NewDefault returns a Memory with the standard code/data/stack segments
// mapped.
func NewDefault() *Memory {
	m := New()
	m.AddSegment("code", CodeStart, CodeSize, PermRead|PermExecute)
	m.AddSegment("data", DataStart, DataSize, PermRead|PermWrite)
	m.AddSegment("stack", StackStart, StackSize, PermRead|PermWrite)
	return m
}

// LoadFlatFile reads a raw binary image from path and loads it into the
// code segment at CodeStart.
func LoadFlatFile(m *Memory, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return m.LoadBytes(CodeStart, data)
}
