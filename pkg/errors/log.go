package errors

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// LogHandler is an ErrorHandler that logs errors to a writer, stderr by default.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Out receives the log lines. Nil means os.Stderr.
	Out io.Writer

	mu sync.Mutex
}

func (h *LogHandler) out() io.Writer {
	if h.Out == nil {
		return os.Stderr
	}
	return h.Out
}

// colorize wraps a prefix in ANSI colour when writing to a terminal.
func (h *LogHandler) colorize(prefix, color string) string {
	f, ok := h.out().(*os.File)
	if !ok {
		return prefix
	}
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return prefix
	}
	return color + prefix + ansiReset
}

func (h *LogHandler) printf(format string, args ...any) {
	fmt.Fprintf(h.out(), format, args...)
}

func (h *LogHandler) stack(trace string) {
	if h.Verbose && trace != "" {
		h.printf("Stack trace:\n%s\n", trace)
	}
}

// HandleError logs a SignageError.
func (h *LogHandler) HandleError(err *SignageError) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	prefix := h.colorize("[signage error]", ansiRed)
	if h.Verbose {
		h.printf("%s %s [%s]", prefix, err.Op, err.Kind)
		if err.Widget != "" {
			h.printf(" widget=%s", err.Widget)
		}
		h.printf(": %v\n", err.Err)
		h.stack(err.StackTrace)
	} else {
		h.printf("%s %s: %v\n", prefix, err.Op, err.Err)
	}
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	prefix := h.colorize("[signage panic]", ansiRed)
	if err.Op != "" {
		h.printf("%s %s: %v\n", prefix, err.Op, err.Value)
	} else {
		h.printf("%s %v\n", prefix, err.Value)
	}
	h.stack(err.StackTrace)
}

// HandleBuildError logs a BuildError.
func (h *LogHandler) HandleBuildError(err *BuildError) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.printf("%s %s\n", h.colorize("[signage build error]", ansiRed), err.Error())
	h.stack(err.StackTrace)
}

// HandleRefreshError logs a RefreshError. Refresh failures are expected
// during network outages, so they are logged as warnings.
func (h *LogHandler) HandleRefreshError(err *RefreshError) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.printf("%s %s\n", h.colorize("[signage refresh]", ansiYellow), err.Error())
	h.stack(err.StackTrace)
}
