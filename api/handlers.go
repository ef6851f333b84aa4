package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/riscv64-iss/kernel/cpu"
	"github.com/riscv64-iss/kernel/kernel"
)

func parseMemoryQuery(r *http.Request) (addr uint64, length uint32, err error) {
	q := r.URL.Query()

	addr, err = strconv.ParseUint(q.Get("address"), 0, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid address: %w", err)
	}

	l, err := strconv.ParseUint(q.Get("length"), 0, 32)
	if err != nil || l == 0 || l > 4096 {
		return 0, 0, fmt.Errorf("length must be between 1 and 4096")
	}

	return addr, uint32(l), nil
}

func parseDisassemblyQuery(r *http.Request) (addr uint64, count uint32, err error) {
	q := r.URL.Query()

	addr, err = strconv.ParseUint(q.Get("address"), 0, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid address: %w", err)
	}

	c, err := strconv.ParseUint(q.Get("count"), 0, 32)
	if err != nil || c == 0 || c > 256 {
		return 0, 0, fmt.Errorf("count must be between 1 and 256")
	}

	return addr, uint32(c), nil
}

// handleStatus handles GET /api/v1/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stats cpu.Stats
	s.kernel.StatsReport(&stats)

	writeJSON(w, http.StatusOK, StatusResponse{
		Running: s.kernel.Running(),
		PC:      s.kernel.PcGet(),
		Cycles:  stats.Instructions,
	})
}

// handleLoad handles POST /api/v1/load: writes a flat binary image into
// host memory at Address and, if Entry is non-zero, sets the PC.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.memory == nil {
		writeError(w, http.StatusServiceUnavailable, "no memory bound to this server")
		return
	}

	var req LoadRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.memory.LoadBytes(req.Address, req.Data); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("load failed: %v", err))
		return
	}

	if req.Entry != 0 {
		s.kernel.PcSet(req.Entry)
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "program loaded"})
}

// handleReset handles POST /api/v1/reset: re-initializes the kernel with
// the services it was originally constructed with.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.kernel.Init(s.services)

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "kernel reset"})
}

// handleStep handles POST /api/v1/step: single-steps the kernel once.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.kernel.Step()
	s.broadcastState()
	s.broadcastIfTerminal(result)

	writeJSON(w, http.StatusOK, StepResponse{
		Result:         result.String(),
		PC:             s.kernel.PcGet(),
		CyclesExecuted: 1,
	})
}

// handleRun handles POST /api/v1/run: runs up to Cycles instructions, or
// until halt/fault.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req StepRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Cycles <= 0 {
		req.Cycles = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.kernel.CPU.SetRunning(true)

	executed := 0
	var last kernel.StepResult
	for executed < req.Cycles {
		if shouldBreak, _ := s.debugger.ShouldBreak(); shouldBreak {
			break
		}

		last = s.kernel.Step()
		executed++

		if last != kernel.Ran {
			break
		}
	}

	s.broadcastState()
	s.broadcastIfTerminal(last)

	writeJSON(w, http.StatusOK, StepResponse{
		Result:         last.String(),
		PC:             s.kernel.PcGet(),
		CyclesExecuted: executed,
	})
}

// handleStop handles POST /api/v1/stop: halts the run loop without
// altering architectural state.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.kernel.CPU.SetRunning(false)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "stopped"})
}

// handleRegisters handles GET /api/v1/registers.
func (s *Server) handleRegisters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var x [32]uint64
	for i := range x {
		x[i] = s.kernel.RegGet(i)
	}

	writeJSON(w, http.StatusOK, RegistersResponse{X: x, PC: s.kernel.PcGet()})
}

// handleRegisterSet handles PUT /api/v1/register to patch a single
// register (or "pc" via index -1).
func (s *Server) handleRegisterSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterSetRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Index == -1 {
		s.kernel.PcSet(req.Value)
	} else if req.Index >= 0 && req.Index <= 31 {
		s.kernel.RegSet(req.Index, req.Value)
	} else {
		writeError(w, http.StatusBadRequest, "register index must be 0-31, or -1 for pc")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleMemory handles GET /api/v1/memory?address=&length=.
func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.memory == nil {
		writeError(w, http.StatusServiceUnavailable, "no memory bound to this server")
		return
	}

	addr, length, err := parseMemoryQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := make([]byte, length)
	for i := uint32(0); i < length; i++ {
		data[i] = s.memory.Load8(addr + uint64(i))
	}

	writeJSON(w, http.StatusOK, MemoryResponse{Address: addr, Data: data})
}

// handleDisassembly handles GET /api/v1/disassembly?address=&count=.
func (s *Server) handleDisassembly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.memory == nil {
		writeError(w, http.StatusServiceUnavailable, "no memory bound to this server")
		return
	}

	addr, count, err := parseDisassemblyQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	instructions := make([]InstructionInfo, 0, count)
	for i := uint32(0); i < count; i++ {
		a := addr + uint64(i*4)
		instr := s.memory.Load32(a)
		instructions = append(instructions, InstructionInfo{
			Address:     a,
			MachineCode: instr,
			Disassembly: s.kernel.Disasm(a, instr),
		})
	}

	writeJSON(w, http.StatusOK, DisassemblyResponse{Instructions: instructions})
}

// handleStats handles GET /api/v1/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stats cpu.Stats
	s.kernel.StatsReport(&stats)

	writeJSON(w, http.StatusOK, ToStatsResponse(&stats))
}

// handleBreakpoints handles GET/POST /api/v1/breakpoints.
func (s *Server) handleBreakpoints(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		defer s.mu.Unlock()

		bps := s.debugger.Breakpoints.GetAllBreakpoints()
		resp := BreakpointsResponse{Breakpoints: make([]BreakpointInfo, 0, len(bps))}
		for _, bp := range bps {
			resp.Breakpoints = append(resp.Breakpoints, BreakpointInfo{
				ID: bp.ID, Address: bp.Address, Enabled: bp.Enabled, HitCnt: bp.HitCount,
			})
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var req BreakpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		bp := s.debugger.Breakpoints.AddBreakpoint(req.Address, req.Temporary, "")
		writeJSON(w, http.StatusCreated, BreakpointInfo{ID: bp.ID, Address: bp.Address, Enabled: bp.Enabled, HitCnt: bp.HitCount})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleBreakpointByID handles DELETE /api/v1/breakpoints/{id}.
func (s *Server) handleBreakpointByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := pathID(r, "/api/v1/breakpoints/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid breakpoint id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.debugger.Breakpoints.DeleteBreakpoint(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleWatchpoints handles GET/POST /api/v1/watchpoints.
func (s *Server) handleWatchpoints(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		defer s.mu.Unlock()

		wps := s.debugger.Watchpoints.GetAllWatchpoints()
		resp := WatchpointsResponse{Watchpoints: make([]WatchpointInfo, 0, len(wps))}
		for _, wp := range wps {
			resp.Watchpoints = append(resp.Watchpoints, WatchpointInfo{
				ID: wp.ID, Expression: wp.Expression, LastValue: wp.LastValue, HitCnt: wp.HitCount,
			})
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var req WatchpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.debugger.ExecuteCommand("watch " + req.Expression); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		wps := s.debugger.Watchpoints.GetAllWatchpoints()
		if len(wps) == 0 {
			writeError(w, http.StatusInternalServerError, "watchpoint not created")
			return
		}
		wp := wps[len(wps)-1]
		writeJSON(w, http.StatusCreated, WatchpointInfo{ID: wp.ID, Expression: wp.Expression, LastValue: wp.LastValue, HitCnt: wp.HitCount})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleWatchpointByID handles DELETE /api/v1/watchpoints/{id}.
func (s *Server) handleWatchpointByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := pathID(r, "/api/v1/watchpoints/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid watchpoint id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.debugger.Watchpoints.DeleteWatchpoint(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// broadcastState emits a state event to all subscribed WebSocket clients.
// Caller must hold s.mu.
func (s *Server) broadcastState() {
	var x [32]uint64
	for i := range x {
		x[i] = s.kernel.RegGet(i)
	}
	var stats cpu.Stats
	s.kernel.StatsReport(&stats)

	s.broadcaster.BroadcastState(map[string]interface{}{
		"running": s.kernel.Running(),
		"pc":      s.kernel.PcGet(),
		"x":       x,
		"cycles":  stats.Instructions,
	})
}

// broadcastIfTerminal emits an execution event when a step/run reaches a
// halt or fault. Caller must hold s.mu.
func (s *Server) broadcastIfTerminal(result kernel.StepResult) {
	switch result {
	case kernel.Halted:
		s.broadcaster.BroadcastExecutionEvent("halted", map[string]interface{}{"address": s.kernel.PcGet()})
	case kernel.Fault:
		s.broadcaster.BroadcastExecutionEvent("fault", map[string]interface{}{"address": s.kernel.PcGet()})
	}
}
