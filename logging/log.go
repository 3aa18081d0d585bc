// Package logging gives MLSP a single process-wide structured logger.
//
// The server speaks LSP over stdin/stdout, so nothing may ever be written
// there except framed protocol messages; every log line goes to a file in
// the OS temp directory instead.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var Logger *slog.Logger

// Init opens the log file and installs the package logger. Each call
// truncates the file and replaces Logger; the previous file handle is
// not closed.
func Init() (*slog.Logger, error) {
	path := filepath.Join(os.TempDir(), "mlsp-log.txt")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	Logger = New(f)
	return Logger, nil
}

// New builds a logger over an arbitrary writer, for tests and tools that
// should not touch the shared temp-file logger.
func New(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
