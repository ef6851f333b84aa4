package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riscv64-iss/kernel/cpu"
	"github.com/riscv64-iss/kernel/debugger"
	"github.com/riscv64-iss/kernel/hostmem"
	"github.com/riscv64-iss/kernel/kernel"
)

// encodeAddiImm encodes "addi rd, x0, imm" (I-type, opcode 0x13).
func encodeAddiImm(rd int, imm int32) uint32 {
	return uint32(imm)<<20 | uint32(rd)<<7 | 0x13
}

const ebreakWord = uint32(0x00100073)

func newTestServer(t *testing.T) (*Server, *hostmem.Memory) {
	t.Helper()

	mem := hostmem.New()
	mem.AddSegment("ram", 0x1000, 0x1000, hostmem.PermRead|hostmem.PermWrite|hostmem.PermExecute)

	k := kernel.New()
	services := cpu.Services{
		Load8:    mem.Load8,
		Load16:   mem.Load16,
		Load32:   mem.Load32,
		Load64:   mem.Load64,
		Store8:   mem.Store8,
		Store16:  mem.Store16,
		Store32:  mem.Store32,
		Store64:  mem.Store64,
		LogTrace: func(uint64, uint64, [32]uint64) {},
		LogMsg:   func(string) {},
		Panic:    func(string) {},
	}
	k.Init(services)
	mem.OnFault = func(msg string) { services.Panic(msg) }

	dbg := debugger.NewDebugger(k, services, mem)
	s := NewServer(0, k, dbg, mem, services)
	return s, mem
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp["status"])
}

func TestHandleRegistersAndSet(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/v1/register", RegisterSetRequest{Index: 6, Value: 0x42})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/registers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var regs RegistersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regs))
	require.Equal(t, uint64(0x42), regs.X[6])
}

func TestHandleLoadStepAndStatus(t *testing.T) {
	s, _ := newTestServer(t)

	// addi x6, x0, 5; ebreak
	addi := encodeAddiImm(6, 5)

	data := make([]byte, 8)
	for i := 0; i < 4; i++ {
		data[i] = byte(addi >> (8 * i))
		data[i+4] = byte(ebreakWord >> (8 * i))
	}

	rec := doRequest(t, s, http.MethodPost, "/api/v1/load", LoadRequest{Address: 0x1000, Data: data, Entry: 0x1000})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/step", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stepResp StepResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stepResp))
	require.Equal(t, "ran", stepResp.Result)
	require.Equal(t, uint64(0x1004), stepResp.PC)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, uint64(0x1004), status.PC)
}

func TestHandleBreakpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/breakpoints", BreakpointRequest{Address: 0x2000})
	require.Equal(t, http.StatusCreated, rec.Code)

	var bp BreakpointInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bp))
	require.Equal(t, uint64(0x2000), bp.Address)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/breakpoints", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list BreakpointsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Breakpoints, 1)

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/breakpoints/"+strconv.Itoa(bp.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleWatchpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/watchpoints", WatchpointRequest{Expression: "x6"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var wp WatchpointInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wp))
	require.Equal(t, "x6", wp.Expression)

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/watchpoints/"+strconv.Itoa(wp.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestIsAllowedOrigin(t *testing.T) {
	require.True(t, isAllowedOrigin(""))
	require.True(t, isAllowedOrigin("http://localhost:3000"))
	require.True(t, isAllowedOrigin("https://127.0.0.1:8080"))
	require.True(t, isAllowedOrigin("file://"))
	require.False(t, isAllowedOrigin("https://evil.example.com"))
}
