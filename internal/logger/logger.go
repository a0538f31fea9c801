// Package logger routes slog output to a file, since the terminal belongs to
// the TUI.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/pkg/errors"
)

var (
	mu       sync.Mutex
	levelVar = new(slog.LevelVar)
	logFile  *os.File
)

// Init opens path for appending and installs it as the default slog handler.
// An empty path discards all output.
func Init(path string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	SetDebug(debug)

	var f *os.File
	if path != "" {
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.Wrapf(err, "open log file %s", path)
		}
	}
	closeLocked()
	logFile = f

	var w io.Writer = io.Discard
	if f != nil {
		w = f
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar})))
	return nil
}

// SetDebug toggles debug level output
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Close flushes and closes the log file, if any
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}
