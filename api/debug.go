package api

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

var apiLog *log.Logger

func init() {
	if os.Getenv("RVISS_API_DEBUG") != "" {
		// Note: file handle intentionally not closed, kept open for process lifetime.
		logPath := filepath.Join(os.TempDir(), "rviss-api-debug.log")
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 -- fixed filename in temp dir
		if err != nil {
			apiLog = log.New(os.Stderr, "API: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		} else {
			apiLog = log.New(f, "API: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		}
	} else {
		apiLog = log.New(io.Discard, "", 0)
	}
}

// debugLog logs a message if debug logging is enabled via RVISS_API_DEBUG.
func debugLog(format string, args ...interface{}) {
	apiLog.Printf(format, args...)
}
