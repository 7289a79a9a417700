package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// handlerBox lets an interface value live in an atomic.Pointer.
type handlerBox struct{ h ErrorHandler }

// current holds the global handler. Refresh loops report from their own
// goroutines, so handlers must be safe for concurrent use.
var current atomic.Pointer[handlerBox]

func init() {
	current.Store(&handlerBox{&LogHandler{}})
}

// SetHandler replaces the global error handler.
// Pass nil to restore a LogHandler writing to stderr.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	current.Store(&handlerBox{h})
}

// Handler returns the global error handler.
func Handler() ErrorHandler {
	return current.Load().h
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

// Report sends an error to the global handler, stamping it with the current
// time if it has none.
func Report(err *SignageError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandleError(err)
}

// ReportPanic sends a recovered panic to the global handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandlePanic(err)
}

// ReportBuildError sends a build failure to the global handler.
func ReportBuildError(err *BuildError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandleBuildError(err)
}

// ReportRefreshError sends a refresh step failure to the global handler.
func ReportRefreshError(err *RefreshError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandleRefreshError(err)
}

// Recover reports a panic in the calling goroutine instead of crashing.
//
//	defer errors.Recover("signage.reload")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
		})
	}
}

// CaptureStack returns the current call stack, one "function\n\tfile:line"
// entry per frame. The CaptureStack frame and its caller's deferred recover
// are skipped.
func CaptureStack() string {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for more := true; more; {
		var frame runtime.Frame
		frame, more = frames.Next()
		sb.WriteString(frame.Function + "\n\t" + frame.File + ":" + strconv.Itoa(frame.Line) + "\n")
	}
	return sb.String()
}
