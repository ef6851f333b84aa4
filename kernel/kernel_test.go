package kernel

import (
	"testing"

	"github.com/riscv64-iss/kernel/cpu"
	"github.com/riscv64-iss/kernel/isa"
	"github.com/stretchr/testify/require"
)

// flatMemory is a minimal byte-addressable little-endian memory used only
// to drive the kernel end-to-end in tests.
type flatMemory struct {
	bytes [0x10000]byte
}

func (m *flatMemory) services(t *testing.T, panicMsgs *[]string) cpu.Services {
	return cpu.Services{
		Load8:  func(addr uint64) uint8 { return m.bytes[addr] },
		Load16: func(addr uint64) uint16 {
			return uint16(m.bytes[addr]) | uint16(m.bytes[addr+1])<<8
		},
		Load32: func(addr uint64) uint32 {
			var v uint32
			for i := 0; i < 4; i++ {
				v |= uint32(m.bytes[addr+uint64(i)]) << (8 * i)
			}
			return v
		},
		Load64: func(addr uint64) uint64 {
			var v uint64
			for i := 0; i < 8; i++ {
				v |= uint64(m.bytes[addr+uint64(i)]) << (8 * i)
			}
			return v
		},
		Store8: func(addr uint64, v uint8) { m.bytes[addr] = v },
		Store16: func(addr uint64, v uint16) {
			m.bytes[addr] = byte(v)
			m.bytes[addr+1] = byte(v >> 8)
		},
		Store32: func(addr uint64, v uint32) {
			for i := 0; i < 4; i++ {
				m.bytes[addr+uint64(i)] = byte(v >> (8 * i))
			}
		},
		Store64: func(addr uint64, v uint64) {
			for i := 0; i < 8; i++ {
				m.bytes[addr+uint64(i)] = byte(v >> (8 * i))
			}
		},
		LogTrace: func(step uint64, pc uint64, regs [32]uint64) {},
		LogMsg:   func(msg string) {},
		Panic: func(msg string) {
			*panicMsgs = append(*panicMsgs, msg)
		},
	}
}

func (m *flatMemory) putWord(addr uint64, w uint32) {
	for i := 0; i < 4; i++ {
		m.bytes[addr+uint64(i)] = byte(w >> (8 * i))
	}
}

func newScenario(t *testing.T) (*Kernel, *flatMemory, *[]string) {
	t.Helper()
	k := New()
	mem := &flatMemory{}
	panics := &[]string{}
	k.Init(mem.services(t, panics))
	return k, mem, panics
}

const ebreakWord = uint32(0b000000000001<<20 | 0b1110011)

func TestScenarioLuiAddiBuildsConstant(t *testing.T) {
	k, mem, _ := newScenario(t)
	mem.putWord(0x1000, isa.EncodeU(1, 6, 0b0110111))       // lui x6, 0x1
	mem.putWord(0x1004, isa.EncodeI(0b000, 0x23, 6, 6, 0b0010011)) // addi x6, x6, 0x23
	mem.putWord(0x1008, ebreakWord)

	k.PcSet(0x1000)
	retired := k.Run(0)

	require.Equal(t, uint64(0x1023), k.RegGet(6))
	require.Equal(t, uint64(0x1008), k.PcGet())
	require.False(t, k.Running())
	require.Equal(t, 3, retired)

	var stats cpu.Stats
	k.StatsReport(&stats)
	require.Equal(t, uint64(3), stats.Instructions)
}

func TestScenarioStoreLoadRoundTrip(t *testing.T) {
	k, mem, _ := newScenario(t)
	k.RegSet(2, 0x4000) // base address for sd/ld, preset before running

	mem.putWord(0x1000, isa.EncodeI(0b000, 0x77, 1, 0, 0b0010011)) // addi x1, x0, 0x77
	mem.putWord(0x1004, isa.EncodeS(0b011, 0, 2, 1, 0b0100011))    // sd x1, 0(x2)
	mem.putWord(0x1008, isa.EncodeI(0b011, 0, 3, 2, 0b0000011))    // ld x3, 0(x2)
	mem.putWord(0x100c, ebreakWord)

	k.PcSet(0x1000)
	k.Run(0)

	require.Equal(t, uint64(0x77), k.RegGet(3))

	var stats cpu.Stats
	k.StatsReport(&stats)
	require.Equal(t, uint64(1), stats.Stores)
	// fetches (4) + the ld's own data load (1) = 5 loads
	require.Equal(t, uint64(5), stats.Loads)
}

func TestScenarioBranchTakenVsNotTaken(t *testing.T) {
	k, mem, _ := newScenario(t)
	mem.putWord(0x1000, isa.EncodeI(0b000, 5, 1, 0, 0b0010011))   // addi x1, x0, 5
	mem.putWord(0x1004, isa.EncodeI(0b000, 5, 2, 0, 0b0010011))   // addi x2, x0, 5
	mem.putWord(0x1008, isa.EncodeB(8, 0b000, 1, 2, 0b1100011))   // beq x1, x2, +8 (skip next)
	mem.putWord(0x100c, isa.EncodeI(0b000, 1, 3, 0, 0b0010011))   // addi x3, x0, 1 (skipped)
	mem.putWord(0x1010, isa.EncodeI(0b000, 1, 4, 0, 0b0010011))   // addi x4, x0, 1
	mem.putWord(0x1014, ebreakWord)

	k.PcSet(0x1000)
	k.Run(0)

	require.Equal(t, uint64(0), k.RegGet(3))
	require.Equal(t, uint64(1), k.RegGet(4))
}

func TestScenarioJalWritesLinkAndJumps(t *testing.T) {
	k, mem, _ := newScenario(t)
	mem.putWord(0x2000, isa.EncodeJ(8, 1, 0b1101111))           // jal x1, +8
	mem.putWord(0x2004, ebreakWord)                             // skipped
	mem.putWord(0x2008, isa.EncodeI(0b000, 9, 2, 0, 0b0010011)) // addi x2, x0, 9
	mem.putWord(0x200c, ebreakWord)

	k.PcSet(0x2000)
	k.Run(0)

	require.Equal(t, uint64(0x2004), k.RegGet(1))
	require.Equal(t, uint64(9), k.RegGet(2))
	require.Equal(t, uint64(0x200c), k.PcGet())
}

func TestScenarioX0Immutable(t *testing.T) {
	k, mem, _ := newScenario(t)
	mem.putWord(0x1000, isa.EncodeI(0b000, 42, 0, 0, 0b0010011)) // addi x0, x0, 42
	mem.putWord(0x1004, ebreakWord)

	k.PcSet(0x1000)
	k.Run(0)

	require.Equal(t, uint64(0), k.RegGet(0))
}

func TestScenarioUnknownInstructionPanics(t *testing.T) {
	k, mem, panics := newScenario(t)
	mem.putWord(0x1000, 0xFFFFFFFF)

	k.PcSet(0x1000)
	retired := k.Run(1)

	require.Len(t, *panics, 1)
	require.False(t, k.Running())
	require.Equal(t, 0, retired)
}

func TestUniversalInvariantsHoldAfterEveryRanStep(t *testing.T) {
	k, mem, _ := newScenario(t)
	mem.putWord(0x1000, isa.EncodeI(0b000, 1, 1, 0, 0b0010011))
	mem.putWord(0x1004, isa.EncodeI(0b000, 1, 2, 0, 0b0010011))
	mem.putWord(0x1008, ebreakWord)

	k.CPU.SetRunning(true)
	k.PcSet(0x1000)

	prevPC := k.PcGet()
	var prevInstr uint64
	for i := 0; i < 2; i++ {
		result := k.Step()
		require.Equal(t, Ran, result)
		require.Equal(t, uint64(0), k.RegGet(0))

		var stats cpu.Stats
		k.StatsReport(&stats)
		require.Equal(t, prevInstr+1, stats.Instructions)
		prevInstr = stats.Instructions

		require.Equal(t, prevPC+4, k.PcGet())
		prevPC = k.PcGet()
	}
}

func TestInfoReportsAPIVersion(t *testing.T) {
	k := New()
	require.Contains(t, k.Info(), "api=1.0")
}

func TestDisasmUnknownEncoding(t *testing.T) {
	k := New()
	got := k.Disasm(0x1000, 0xFFFFFFFF)
	require.Contains(t, got, "?")
}

func TestDisasmKnownEncoding(t *testing.T) {
	k := New()
	instr := isa.EncodeI(0b000, 0x23, 6, 6, 0b0010011)
	got := k.Disasm(0x1000, instr)
	require.Contains(t, got, "addi")
}
