package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestSignageErrorString(t *testing.T) {
	err := &SignageError{
		Op:   "widgets.ContentStream",
		Kind: KindFetch,
		Err:  fmt.Errorf("connection refused"),
	}
	want := "widgets.ContentStream [fetch]: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestSignageErrorWithWidget(t *testing.T) {
	err := &SignageError{
		Op:     "widgets.ContentStream",
		Kind:   KindParsing,
		Widget: "widgets.Text",
		Err:    &ParseError{Format: "json", Err: fmt.Errorf("bad input")},
	}
	if got := err.Error(); !strings.Contains(got, "widget=widgets.Text") {
		t.Errorf("error string %q should contain widget info", got)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindFetch, "fetch"},
		{KindParsing, "parsing"},
		{KindInit, "init"},
		{KindRender, "render"},
		{KindPanic, "panic"},
		{KindBuild, "build"},
		{KindRegistry, "registry"},
		{KindNesting, "nesting"},
		{KindLifecycle, "lifecycle"},
		{KindRefresh, "refresh"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test panic", Timestamp: time.Now()}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
	err.Op = "refresh.tick"
	if got, want := err.Error(), "panic in refresh.tick: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestUnknownKindError(t *testing.T) {
	err := &UnknownKindError{Kind: "blink", Path: []string{"group", "group[1]", "blink"}}
	want := `unknown widget kind "blink" at group > group[1] > blink`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, ErrUnknownKind) {
		t.Error("expected errors.Is(err, ErrUnknownKind)")
	}

	root := &UnknownKindError{Kind: "blink", Path: []string{"blink"}}
	if got, want := root.Error(), `unknown widget kind "blink"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestStructuredErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{&NestingError{Parent: "widgets.AttributeInjector", Child: "refresh.Refresh"}, ErrIllegalNesting},
		{&LifecycleError{Op: "core.Mount"}, ErrAnchorExists},
		{&DuplicateKeyError{Key: 7, First: 0, Second: 2}, ErrDuplicateKey},
	}
	for _, tt := range tests {
		wrapped := fmt.Errorf("wrapped: %w", tt.err)
		if !stderrors.Is(wrapped, tt.sentinel) {
			t.Errorf("%T does not match %v", tt.err, tt.sentinel)
		}
	}
}

func TestBuildErrorString(t *testing.T) {
	err := &BuildError{Widget: "widgets.Clock", Recovered: "nil pointer dereference"}
	if got, want := err.Error(), "panic in widgets.Clock.Build(): nil pointer dereference"; got != want {
		t.Errorf("BuildError.Error() = %q, want %q", got, want)
	}

	err2 := &BuildError{Widget: "widgets.Clock", Err: fmt.Errorf("bad format")}
	if got := err2.Error(); !strings.Contains(got, "error in widgets.Clock.Build()") {
		t.Errorf("BuildError.Error() = %q, should contain 'error in'", got)
	}

	err3 := &BuildError{Widget: "widgets.Clock"}
	if got, want := err3.Error(), "unknown error in widgets.Clock.Build()"; got != want {
		t.Errorf("BuildError.Error() = %q, want %q", got, want)
	}
}

func TestRefreshErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("timeout")
	err := &RefreshError{Widget: "widgets.Department", Err: cause}
	if !stderrors.Is(err, cause) {
		t.Error("expected RefreshError to unwrap to its cause")
	}
}

func TestReport(t *testing.T) {
	var captured *SignageError
	SetHandler(&testHandler{onError: func(err *SignageError) { captured = err }})
	defer SetHandler(nil)

	Report(&SignageError{Op: "test.op", Kind: KindInit, Err: fmt.Errorf("boom")})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReportRefreshError(t *testing.T) {
	var captured *RefreshError
	SetHandler(&testHandler{onRefresh: func(err *RefreshError) { captured = err }})
	defer SetHandler(nil)

	ReportRefreshError(&RefreshError{Widget: "widgets.Department", Err: fmt.Errorf("503")})

	if captured == nil {
		t.Fatal("expected refresh error to be captured")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	SetHandler(&testHandler{onPanic: func(err *PanicError) { captured = err }})
	defer SetHandler(nil)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Fatal("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(nil)
	if _, ok := Handler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", Handler())
	}
}

func TestLogHandlerWritesToOut(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Out: &buf, Verbose: true}

	h.HandleRefreshError(&RefreshError{Widget: "widgets.Department", Err: fmt.Errorf("503"), StackTrace: "frame"})
	h.HandleBuildError(&BuildError{Widget: "widgets.Clock", Recovered: "boom"})

	got := buf.String()
	for _, want := range []string{
		"[signage refresh] refresh step of widgets.Department failed: 503",
		"Stack trace:\nframe",
		"[signage build error] panic in widgets.Clock.Build(): boom",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("log output %q should contain %q", got, want)
		}
	}
	if strings.Contains(got, ansiReset) {
		t.Error("non-terminal writer should not receive ANSI colour codes")
	}
}

type testHandler struct {
	onError   func(*SignageError)
	onPanic   func(*PanicError)
	onBuild   func(*BuildError)
	onRefresh func(*RefreshError)
}

func (h *testHandler) HandleError(err *SignageError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}

func (h *testHandler) HandleBuildError(err *BuildError) {
	if h.onBuild != nil {
		h.onBuild(err)
	}
}

func (h *testHandler) HandleRefreshError(err *RefreshError) {
	if h.onRefresh != nil {
		h.onRefresh(err)
	}
}
