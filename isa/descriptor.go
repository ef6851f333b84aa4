package isa

import "github.com/riscv64-iss/kernel/cpu"

// Descriptor represents one instruction variant: its match pattern and
// its pair of semantic functions. Per spec.md §3, mask must cover every
// field the ISA uses to distinguish this variant, and (mask & bits) ==
// bits always holds for well-formed entries.
type Descriptor struct {
	// Name is the short ASCII mnemonic, e.g. "addi".
	Name string

	// Mask and Bits together define the match: an instruction word instr
	// matches this descriptor iff (instr & Mask) == Bits.
	Mask uint32
	Bits uint32

	// Disassemble renders the decoded operands of instr as the mnemonic
	// plus operand text (no leading hex encoding; that prefix is added by
	// the kernel's Disasm per spec.md §6).
	Disassemble func(instr uint32) string

	// Execute mutates CPU state for instr and reports whether it wrote
	// PC itself. When it returns false the kernel dispatch loop advances
	// PC by 4.
	Execute func(c *cpu.CPU, instr uint32) (pcWritten bool)
}

// Matches reports whether instr satisfies this descriptor's mask/bits
// pattern.
func (d *Descriptor) Matches(instr uint32) bool {
	return instr&d.Mask == d.Bits
}

// Registry is an ordered, append-only sequence of descriptors. Matching
// order is registration order: earlier entries take precedence on any
// (bug) overlap between variants, per spec.md §3.
type Registry struct {
	entries []*Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Append extends the registry with descriptors, referenced by pointer
// rather than copied; the descriptors named here are typically package-
// level static values built once. Returns the number of descriptors
// added.
func (r *Registry) Append(descriptors ...*Descriptor) int {
	r.entries = append(r.entries, descriptors...)
	return len(descriptors)
}

// Lookup performs the linear first-match scan spec.md §4.C specifies.
// The registry is small (dozens of entries) and dispatch cost is
// negligible next to host memory callbacks, so this scan is intentional;
// an opcode-indexed table would be a valid optimization provided it
// preserves first-match-wins order within any bucket.
func (r *Registry) Lookup(instr uint32) *Descriptor {
	for _, d := range r.entries {
		if d.Matches(instr) {
			return d
		}
	}
	return nil
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int { return len(r.entries) }
