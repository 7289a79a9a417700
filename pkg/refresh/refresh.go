// Package refresh provides widgets that keep part of the mounted tree up to
// date on their own timers.
//
// Refresh rebuilds and swaps its subtree in place whenever its step reports
// new state; IdentityCache lets the rebuilt subtree reuse the nodes of
// children that did not change.
package refresh

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/net/html"

	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/errors"
)

// DefaultPeriod is used by static refreshes that do not name a period.
const DefaultPeriod = 5 * time.Minute

// StepFunc updates a widget's state, typically by fetching from a remote
// endpoint. It reports whether the subtree must be rebuilt.
type StepFunc func(ctx context.Context) (dirty bool, err error)

// Refresh is a widget whose subtree is rebuilt on a timer.
//
// Every Period, once its node is mounted, Refresh calls Step. When Step
// reports dirty, Builder runs again and the result replaces the previous
// node in place. Attributes applied to the node from outside (by an enclosing
// AttributeInjector or by intrinsic classes of enclosing widgets) are carried
// over to the replacement. A failing Step is reported and the previous node
// stays displayed. The timer chain stops once the node leaves the tree.
//
// A nil Step rebuilds on every tick.
type Refresh struct {
	Step    StepFunc
	Period  time.Duration
	Builder func() core.Widget
	// Eager runs the first Step as soon as the node is attached rather than
	// one Period later.
	Eager bool
	// Name identifies the owner in error reports.
	Name string
}

// Every returns a Refresh that rebuilds builder's output every period.
func Every(period time.Duration, builder func() core.Widget) Refresh {
	return Refresh{Period: period, Builder: builder}
}

// Poll returns a Refresh that runs step every period and rebuilds when it
// reports dirty.
func Poll(period time.Duration, step StepFunc, builder func() core.Widget) Refresh {
	return Refresh{Step: step, Period: period, Builder: builder}
}

func (r Refresh) Build(ctx core.BuildContext) core.Widget {
	if r.Builder == nil {
		panic("refresh: nil Builder")
	}
	if r.Period <= 0 {
		panic(fmt.Sprintf("refresh: period must be positive, got %v", r.Period))
	}
	node := core.Render(ctx, r.Builder())
	s := &scheduler{refresh: r, baseline: dom.Attrs(node)}
	if anchor := ctx.Anchor(); anchor != nil {
		anchor.Watch(node, func() { s.start(ctx, anchor, node) })
	}
	return core.Node(node)
}

func (r Refresh) name() string {
	if r.Name != "" {
		return r.Name
	}
	return "refresh.Refresh"
}

// scheduler is the per-mount state of a Refresh. The widget itself stays
// free of node references; each Build that gets attached owns one scheduler.
type scheduler struct {
	refresh Refresh
	// baseline holds the attributes the builder itself produced for the
	// current node. Anything else on the node was applied from outside.
	baseline map[string]string
}

func (s *scheduler) start(bctx core.BuildContext, anchor *core.Anchor, node *html.Node) {
	ctx, cancel := context.WithCancel(bctx.Context())
	lease := anchor.Lease(node, cancel)
	go s.run(ctx, core.WithContext(bctx, ctx), lease)
}

func (s *scheduler) run(ctx context.Context, bctx core.BuildContext, lease *core.Lease) {
	defer lease.Release()
	clock := bctx.Clock()
	for wait := !s.refresh.Eager; ; wait = true {
		if wait {
			select {
			case <-ctx.Done():
				return
			case <-clock.After(s.refresh.Period):
			}
		}
		if ctx.Err() != nil || !lease.Attached() {
			return
		}
		if !s.step(ctx) {
			continue
		}
		if _, ok := lease.Swap(func(old *html.Node) *html.Node {
			return s.rebuild(bctx, old)
		}); !ok {
			return
		}
	}
}

// step runs the Step function, turning errors and panics into reports.
func (s *scheduler) step(ctx context.Context) (dirty bool) {
	if s.refresh.Step == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			errors.ReportRefreshError(&errors.RefreshError{
				Widget:     s.refresh.name(),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
			dirty = false
		}
	}()
	dirty, err := s.refresh.Step(ctx)
	if err != nil {
		if ctx.Err() == nil {
			errors.ReportRefreshError(&errors.RefreshError{
				Widget: s.refresh.name(),
				Err:    err,
			})
		}
		return false
	}
	return dirty
}

// rebuild renders a replacement for old, carrying over the attributes that
// were applied to old from outside.
func (s *scheduler) rebuild(bctx core.BuildContext, old *html.Node) *html.Node {
	external := dom.DiffAttrs(s.baseline, dom.Attrs(old))
	next := core.Render(bctx, s.refresh.Builder())
	s.baseline = dom.Attrs(next)
	dom.ApplyAttrs(next, external)
	return next
}
