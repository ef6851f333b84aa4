package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/riscv64-iss/kernel/cpu"
	"github.com/riscv64-iss/kernel/debugger"
	"github.com/riscv64-iss/kernel/hostmem"
	"github.com/riscv64-iss/kernel/kernel"
)

// Server is an HTTP+WebSocket front end for a single embedded kernel. Unlike
// a multi-tenant session manager, there is exactly one Kernel per Server: a
// reference host exposes the machine it is running, not a pool of them.
type Server struct {
	mu       sync.Mutex
	kernel   *kernel.Kernel
	debugger *debugger.Debugger
	memory   *hostmem.Memory
	services cpu.Services

	broadcaster *Broadcaster
	mux         *http.ServeMux
	server      *http.Server
	port        int
}

// NewServer creates an API server around an already-initialized kernel,
// its debugger front end, and the host memory backing it (mem may be nil
// if the kernel was built without a MemoryAccess-capable backend).
func NewServer(port int, k *kernel.Kernel, dbg *debugger.Debugger, mem *hostmem.Memory, services cpu.Services) *Server {
	s := &Server{
		kernel:      k,
		debugger:    dbg,
		memory:      mem,
		services:    services,
		broadcaster: NewBroadcaster(),
		mux:         http.NewServeMux(),
		port:        port,
	}

	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler with CORS middleware applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/ws", s.handleWebSocket)

	s.mux.HandleFunc("/api/v1/status", s.handleStatus)
	s.mux.HandleFunc("/api/v1/load", s.handleLoad)
	s.mux.HandleFunc("/api/v1/reset", s.handleReset)

	s.mux.HandleFunc("/api/v1/step", s.handleStep)
	s.mux.HandleFunc("/api/v1/run", s.handleRun)
	s.mux.HandleFunc("/api/v1/stop", s.handleStop)

	s.mux.HandleFunc("/api/v1/registers", s.handleRegisters)
	s.mux.HandleFunc("/api/v1/register", s.handleRegisterSet)

	s.mux.HandleFunc("/api/v1/memory", s.handleMemory)
	s.mux.HandleFunc("/api/v1/disassembly", s.handleDisassembly)

	s.mux.HandleFunc("/api/v1/stats", s.handleStats)

	s.mux.HandleFunc("/api/v1/breakpoints", s.handleBreakpoints)
	s.mux.HandleFunc("/api/v1/breakpoints/", s.handleBreakpointByID)
	s.mux.HandleFunc("/api/v1/watchpoints", s.handleWatchpoints)
	s.mux.HandleFunc("/api/v1/watchpoints/", s.handleWatchpointByID)
}

// Start starts the HTTP server, bound to localhost only.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("API server starting on http://127.0.0.1:%d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and disconnects all clients.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.broadcaster != nil {
		s.broadcaster.Close()
	}

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// GetBroadcaster returns the broadcaster, for tests.
func (s *Server) GetBroadcaster() *Broadcaster {
	return s.broadcaster
}

// corsMiddleware adds CORS headers restricted to localhost origins, since
// this server is meant to be reached only from a debug UI running on the
// same machine.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isAllowedOrigin restricts cross-origin requests to localhost and file://
// origins, rejecting any remote origin outright.
func isAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}

	if strings.HasPrefix(origin, "file://") {
		return true
	}

	return strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "https://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1") ||
		strings.HasPrefix(origin, "https://127.0.0.1")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// pathID extracts the trailing numeric ID from a path like
// /api/v1/breakpoints/3, returning an error if it's missing or malformed.
func pathID(r *http.Request, prefix string) (int, error) {
	idStr := strings.TrimPrefix(r.URL.Path, prefix)
	idStr = strings.Trim(idStr, "/")
	if idStr == "" {
		return 0, fmt.Errorf("id required")
	}
	return strconv.Atoi(idStr)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("error encoding JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func readJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1024*1024))
	return decoder.Decode(v)
}
