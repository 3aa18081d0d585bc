package server

import (
	"context"
	"os"
	"syscall"
	"time"

	"github.com/carn181/mlsp/logging"
)

// livenessPollInterval is how often Main probes the client PID
// (spec.md §5: "Main... periodically polls whether the editor process
// is still alive"). No pack example wires PID liveness polling (the
// closest, cue-lang-cue's gopls server/general.go, only logs the
// server's own pid), so this is built directly against the stdlib
// os.Process primitive the Go ecosystem itself uses for the purpose;
// no third-party process-liveness library exists in the examples to
// ground this on instead.
const livenessPollInterval = 2 * time.Second

// WatchClientLiveness polls s.ClientPID until it either stops existing
// or ctx is cancelled, then calls onDeath exactly once in the former
// case. It returns once the poll loop ends. A ClientPID of 0 (no
// processId sent at initialize) makes this a no-op, since some clients
// legitimately omit it and MLSP has nothing to poll.
func (s *Server) WatchClientLiveness(ctx context.Context, onDeath func()) {
	if s.ClientPID == 0 {
		return
	}

	ticker := time.NewTicker(livenessPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !processAlive(s.ClientPID) {
				logging.Logger.Warn("client process no longer alive, exiting", "pid", s.ClientPID)
				onDeath()
				return
			}
		}
	}
}

// processAlive reports whether pid names a live process. Sending the
// zero signal never actually delivers a signal; it only performs the
// existence/permission check os.Process.Signal does on every platform
// the standard library supports, which is the portable idiom for this
// (os.FindProcess itself always succeeds on POSIX — the kernel lookup
// only happens on Signal).
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
