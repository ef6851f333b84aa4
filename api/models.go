package api

import (
	"time"

	"github.com/riscv64-iss/kernel/cpu"
)

// LoadRequest represents a request to load a flat binary image into memory.
type LoadRequest struct {
	Address uint64 `json:"address"`
	Data    []byte `json:"data"` // base64-decoded by encoding/json
	Entry   uint64 `json:"entry,omitempty"`
}

// StatusResponse represents the current status of the kernel.
type StatusResponse struct {
	Running bool   `json:"running"`
	PC      uint64 `json:"pc"`
	Cycles  uint64 `json:"cycles"`
}

// RegistersResponse represents the current register file.
type RegistersResponse struct {
	X  [32]uint64 `json:"x"`
	PC uint64     `json:"pc"`
}

// RegisterSetRequest sets a single register by index (0-31).
type RegisterSetRequest struct {
	Index int    `json:"index"`
	Value uint64 `json:"value"`
}

// MemoryRequest represents a request for memory data.
type MemoryRequest struct {
	Address uint64 `json:"address"`
	Length  uint32 `json:"length"`
}

// MemoryResponse represents memory data read back from the kernel.
type MemoryResponse struct {
	Address uint64 `json:"address"`
	Data    []byte `json:"data"`
}

// MemoryWriteRequest patches a 32-bit word into memory.
type MemoryWriteRequest struct {
	Address uint64 `json:"address"`
	Value   uint32 `json:"value"`
}

// DisassemblyRequest represents a request for a run of disassembled
// instructions starting at Address.
type DisassemblyRequest struct {
	Address uint64 `json:"address"`
	Count   uint32 `json:"count"`
}

// InstructionInfo represents one disassembled instruction.
type InstructionInfo struct {
	Address     uint64 `json:"address"`
	MachineCode uint32 `json:"machineCode"`
	Disassembly string `json:"disassembly"`
}

// DisassemblyResponse represents a run of disassembled instructions.
type DisassemblyResponse struct {
	Instructions []InstructionInfo `json:"instructions"`
}

// BreakpointRequest represents a request to add a breakpoint.
type BreakpointRequest struct {
	Address   uint64 `json:"address"`
	Temporary bool   `json:"temporary,omitempty"`
}

// BreakpointInfo describes one active breakpoint.
type BreakpointInfo struct {
	ID      int    `json:"id"`
	Address uint64 `json:"address"`
	Enabled bool   `json:"enabled"`
	HitCnt  int    `json:"hitCount"`
}

// BreakpointsResponse lists active breakpoints.
type BreakpointsResponse struct {
	Breakpoints []BreakpointInfo `json:"breakpoints"`
}

// WatchpointRequest represents a request to add a watchpoint via a debugger
// watch expression ("x6", "pc" or "[0x1000]").
type WatchpointRequest struct {
	Expression string `json:"expression"`
}

// WatchpointInfo describes one active watchpoint.
type WatchpointInfo struct {
	ID         int    `json:"id"`
	Expression string `json:"expression"`
	LastValue  uint64 `json:"lastValue"`
	HitCnt     int    `json:"hitCount"`
}

// WatchpointsResponse lists active watchpoints.
type WatchpointsResponse struct {
	Watchpoints []WatchpointInfo `json:"watchpoints"`
}

// StatsResponse mirrors cpu.Stats for wire transport.
type StatsResponse struct {
	Instructions uint64 `json:"instructions"`
	Loads        uint64 `json:"loads"`
	Stores       uint64 `json:"stores"`
	LoadMisses   uint64 `json:"loadMisses"`
	StoreMisses  uint64 `json:"storeMisses"`
}

// ToStatsResponse converts cpu.Stats to its wire representation.
func ToStatsResponse(s *cpu.Stats) StatsResponse {
	return StatsResponse{
		Instructions: s.Instructions,
		Loads:        s.Loads,
		Stores:       s.Stores,
		LoadMisses:   s.LoadMisses,
		StoreMisses:  s.StoreMisses,
	}
}

// StepRequest represents a request to single-step or run for N cycles.
// Cycles of 0 means a single step.
type StepRequest struct {
	Cycles int `json:"cycles,omitempty"`
}

// StepResponse reports the outcome of a step/run request. Result is
// kernel.StepResult.String() ("ran", "not running", "halted", "fault").
type StepResponse struct {
	Result         string `json:"result"`
	PC             uint64 `json:"pc"`
	CyclesExecuted int    `json:"cyclesExecuted"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a simple success response.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Event represents a WebSocket event broadcast to connected clients.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// StateEvent represents a state change event, emitted after every step.
type StateEvent struct {
	Running bool       `json:"running"`
	PC      uint64     `json:"pc"`
	X       [32]uint64 `json:"x"`
	Cycles  uint64     `json:"cycles"`
}

// ExecutionEvent represents an execution milestone (breakpoint hit, halt, fault).
type ExecutionEvent struct {
	Event   string `json:"event"`
	Address uint64 `json:"address,omitempty"`
	Message string `json:"message,omitempty"`
}
