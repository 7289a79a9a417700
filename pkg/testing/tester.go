package testing

import (
	"sync"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/errors"
)

// DefaultTimeout bounds how long helpers wait for scheduler goroutines.
const DefaultTimeout = 2 * time.Second

// Tester mounts a widget tree under a fake clock and records every error
// reported while it is live.
type Tester struct {
	t      testing.TB
	clock  *FakeClock
	anchor *core.Anchor
	target *html.Node
	errors *ErrorRecorder
}

// MountWithT mounts w into a fresh <div id="root"> and registers cleanup
// that tears the anchor down and restores the error handler.
func MountWithT(t testing.TB, w core.Widget) *Tester {
	t.Helper()
	rec := &ErrorRecorder{}
	errors.SetHandler(rec)

	clk := NewFakeClock()
	target := dom.Element("div", "id", "root")
	anchor, err := core.Mount(w, target, core.WithClock(clk))
	if err != nil {
		errors.SetHandler(nil)
		t.Fatalf("Mount: %v", err)
	}
	tester := &Tester{t: t, clock: clk, anchor: anchor, target: target, errors: rec}
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup tears down the anchor and restores the default error handler.
func (tt *Tester) Cleanup() {
	if tt.anchor != nil {
		tt.anchor.Teardown()
		tt.anchor = nil
	}
	errors.SetHandler(nil)
}

// Clock returns the fake clock driving the mounted schedulers.
func (tt *Tester) Clock() *FakeClock { return tt.clock }

// Anchor returns the live anchor.
func (tt *Tester) Anchor() *core.Anchor { return tt.anchor }

// Errors returns the recorder receiving reported errors.
func (tt *Tester) Errors() *ErrorRecorder { return tt.errors }

// Root returns the single node rendered into the mount target.
func (tt *Tester) Root() *html.Node {
	var root *html.Node
	tt.anchor.Update(func(target *html.Node) { root = target.FirstChild })
	return root
}

// HTML renders the mounted tree.
func (tt *Tester) HTML() string {
	return tt.anchor.Snapshot()
}

// FindByClass returns the first mounted node carrying class.
func (tt *Tester) FindByClass(class string) *html.Node {
	var found *html.Node
	tt.anchor.Update(func(target *html.Node) { found = dom.FindByClass(target, class) })
	return found
}

// Tick waits until n timers are pending, then advances the clock by d.
func (tt *Tester) Tick(n int, d time.Duration) {
	tt.t.Helper()
	if !tt.clock.BlockUntil(n, DefaultTimeout) {
		tt.t.Fatalf("timed out waiting for %d pending timers (have %d)", n, tt.clock.Waiters())
	}
	tt.clock.Advance(d)
}

// Eventually polls cond until it holds or DefaultTimeout elapses.
func Eventually(t testing.TB, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(DefaultTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %v: %s", DefaultTimeout, msg)
		}
		time.Sleep(time.Millisecond)
	}
}

// ErrorRecorder is an errors.ErrorHandler that keeps every report.
type ErrorRecorder struct {
	mu       sync.Mutex
	errs     []*errors.SignageError
	panics   []*errors.PanicError
	builds   []*errors.BuildError
	refreshs []*errors.RefreshError
}

func (r *ErrorRecorder) HandleError(err *errors.SignageError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *ErrorRecorder) HandlePanic(err *errors.PanicError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panics = append(r.panics, err)
}

func (r *ErrorRecorder) HandleBuildError(err *errors.BuildError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builds = append(r.builds, err)
}

func (r *ErrorRecorder) HandleRefreshError(err *errors.RefreshError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshs = append(r.refreshs, err)
}

// Errors returns the recorded SignageErrors.
func (r *ErrorRecorder) Errors() []*errors.SignageError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.SignageError(nil), r.errs...)
}

// BuildErrors returns the recorded build failures.
func (r *ErrorRecorder) BuildErrors() []*errors.BuildError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.BuildError(nil), r.builds...)
}

// RefreshErrors returns the recorded refresh step failures.
func (r *ErrorRecorder) RefreshErrors() []*errors.RefreshError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.RefreshError(nil), r.refreshs...)
}
