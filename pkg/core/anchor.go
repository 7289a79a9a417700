package core

import (
	"context"
	"cmp"
	"io"
	"slices"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/errors"
)

var (
	liveMu sync.Mutex
	live   *Anchor
)

// Anchor owns the mount target and tracks which nodes are attached to it.
// At most one Anchor is live per process.
type Anchor struct {
	target *html.Node
	clock  Clock
	ctx    context.Context
	cancel context.CancelFunc

	// treeMu guards the mounted tree and the lease set.
	treeMu   sync.Mutex
	leases   map[*Lease]struct{}
	seq      uint64
	tornDown bool
	// enclosing holds, for a node that was just swapped in, the leases that
	// own it in registration order. Leases registered on that node while it
	// is set belong to nested schedulers and are ordered before them.
	enclosing map[*html.Node][]*Lease

	// watchMu guards the attachment queue. It is taken independently of
	// treeMu because Build calls Watch while the tree is locked.
	watchMu sync.Mutex
	watched []attachment
}

// attachment is a queued Watch request, consumed by the next flush.
type attachment struct {
	node     *html.Node
	onAttach func()
}

type mountConfig struct {
	clock Clock
	ctx   context.Context
}

// MountOption configures Mount.
type MountOption func(*mountConfig)

// WithClock sets the clock handed to schedulers in the mounted tree.
func WithClock(c Clock) MountOption {
	return func(cfg *mountConfig) { cfg.clock = c }
}

// WithParentContext scopes every scheduler in the mounted tree to ctx in
// addition to the anchor's own lifetime.
func WithParentContext(ctx context.Context) MountOption {
	return func(cfg *mountConfig) { cfg.ctx = ctx }
}

// Mount creates the root anchor, renders child once and replaces target's
// children with the result. It fails with *errors.LifecycleError while
// another anchor is live.
func Mount(child Widget, target *html.Node, opts ...MountOption) (*Anchor, error) {
	cfg := mountConfig{clock: SystemClock{}, ctx: context.Background()}
	for _, opt := range opts {
		opt(&cfg)
	}

	liveMu.Lock()
	if live != nil {
		liveMu.Unlock()
		return nil, &errors.LifecycleError{Op: "core.Mount"}
	}
	ctx, cancel := context.WithCancel(cfg.ctx)
	a := &Anchor{
		target: target,
		clock:  cfg.clock,
		ctx:    ctx,
		cancel: cancel,
		leases: make(map[*Lease]struct{}),

		enclosing: make(map[*html.Node][]*Lease),
	}
	live = a
	liveMu.Unlock()

	a.treeMu.Lock()
	node := Render(a.BuildContext(), child)
	dom.ReplaceChildren(target, node)
	ready := a.flushLocked()
	a.treeMu.Unlock()

	runAll(ready)
	return a, nil
}

// Teardown cancels every scheduler in the tree, drops pending attachment
// records and releases the singleton slot so a later Mount succeeds. The
// mounted nodes are left in place. Teardown is idempotent.
func (a *Anchor) Teardown() {
	a.cancel()

	a.treeMu.Lock()
	a.tornDown = true
	for l := range a.leases {
		l.cancel()
	}
	clear(a.leases)
	clear(a.enclosing)
	a.treeMu.Unlock()

	a.watchMu.Lock()
	a.watched = nil
	a.watchMu.Unlock()

	liveMu.Lock()
	if live == a {
		live = nil
	}
	liveMu.Unlock()
}

// BuildContext returns the context widgets in this tree are built with.
func (a *Anchor) BuildContext() BuildContext {
	return &buildContext{ctx: a.ctx, anchor: a, clock: a.clock}
}

// Target returns the mount target.
func (a *Anchor) Target() *html.Node {
	return a.target
}

// Watch queues onAttach to run once node is found attached by the next
// flush. Records are consumed by that flush whether or not their node made
// it into the tree.
func (a *Anchor) Watch(node *html.Node, onAttach func()) {
	if node == nil || onAttach == nil || a.ctx.Err() != nil {
		return
	}
	a.watchMu.Lock()
	a.watched = append(a.watched, attachment{node: node, onAttach: onAttach})
	a.watchMu.Unlock()
}

// Attached reports whether node is part of the mounted tree.
func (a *Anchor) Attached(node *html.Node) bool {
	a.treeMu.Lock()
	defer a.treeMu.Unlock()
	return a.attachedLocked(node)
}

func (a *Anchor) attachedLocked(node *html.Node) bool {
	if a.tornDown || node == nil || node == a.target {
		return false
	}
	return dom.Contains(a.target, node)
}

// Update runs fn with exclusive access to the mounted tree. Nodes that fn
// detaches stop their schedulers; nodes it attaches get their pending
// attachment callbacks. fn must not call back into the anchor.
func (a *Anchor) Update(fn func(target *html.Node)) {
	a.treeMu.Lock()
	fn(a.target)
	a.sweepLocked()
	ready := a.flushLocked()
	a.treeMu.Unlock()
	runAll(ready)
}

// WriteTo renders the mounted tree as HTML.
func (a *Anchor) WriteTo(w io.Writer) error {
	a.treeMu.Lock()
	defer a.treeMu.Unlock()
	for c := a.target.FirstChild; c != nil; c = c.NextSibling {
		if err := dom.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot renders the mounted tree as an HTML string.
func (a *Anchor) Snapshot() string {
	var sb strings.Builder
	if err := a.WriteTo(&sb); err != nil {
		return ""
	}
	return sb.String()
}

// flushLocked takes the attachment queue and returns the callbacks of the
// records whose node is attached, in queue order. The callbacks run after
// the tree lock is released.
func (a *Anchor) flushLocked() []func() {
	a.watchMu.Lock()
	pending := a.watched
	a.watched = nil
	a.watchMu.Unlock()

	var ready []func()
	for _, rec := range pending {
		if a.attachedLocked(rec.node) {
			ready = append(ready, rec.onAttach)
		}
	}
	return ready
}

// sweepLocked cancels the leases whose node left the tree.
func (a *Anchor) sweepLocked() {
	for l := range a.leases {
		if !a.attachedLocked(l.node) {
			l.cancel()
			delete(a.leases, l)
		}
	}
}

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// Lease ties a running scheduler loop to the node it currently owns. The
// anchor cancels the lease when that node is detached by a swap or an
// Update, and on Teardown.
//
// Schedulers nested directly inside each other share one node. Their leases
// are ordered innermost first, which is the order their attachments flush.
type Lease struct {
	anchor *Anchor
	node   *html.Node
	cancel context.CancelFunc
	seq    uint64
}

// Lease registers a scheduler loop owning node. cancel stops the loop. A
// lease for a node that is already detached is cancelled immediately.
func (a *Anchor) Lease(node *html.Node, cancel context.CancelFunc) *Lease {
	l := &Lease{anchor: a, node: node, cancel: cancel}
	a.treeMu.Lock()
	defer a.treeMu.Unlock()
	if !a.attachedLocked(node) {
		cancel()
		return l
	}
	a.seq++
	l.seq = a.seq
	a.leases[l] = struct{}{}
	for _, outer := range a.enclosing[node] {
		a.seq++
		outer.seq = a.seq
	}
	return l
}

// Node returns the node the lease currently owns.
func (l *Lease) Node() *html.Node {
	l.anchor.treeMu.Lock()
	defer l.anchor.treeMu.Unlock()
	return l.node
}

// Attached reports whether the leased node is still mounted.
func (l *Lease) Attached() bool {
	l.anchor.treeMu.Lock()
	defer l.anchor.treeMu.Unlock()
	return l.anchor.attachedLocked(l.node)
}

// Release unregisters the lease and cancels its loop.
func (l *Lease) Release() {
	l.cancel()
	l.anchor.treeMu.Lock()
	delete(l.anchor.leases, l)
	l.anchor.treeMu.Unlock()
}

// Swap replaces the leased node in place with the node returned by build.
// build runs under the tree lock and receives the node being replaced.
// Leases on the old node registered after l belong to enclosing schedulers
// and follow it to the new node. Leases registered before l belong to
// schedulers nested inside it, which build has superseded, and are
// cancelled. Leases whose nodes left the tree are cancelled too, and pending
// attachment callbacks for the new subtree run before Swap returns. Swap
// reports false, without calling build, when the leased node is no longer
// attached.
func (l *Lease) Swap(build func(old *html.Node) *html.Node) (*html.Node, bool) {
	a := l.anchor
	a.treeMu.Lock()
	old := l.node
	if !a.attachedLocked(old) {
		a.treeMu.Unlock()
		return nil, false
	}
	next := build(old)
	if next == nil {
		next = dom.Placeholder()
	}
	dom.Replace(old, next)

	owners := []*Lease{l}
	for other := range a.leases {
		if other == l || other.node != old {
			continue
		}
		if other.seq < l.seq {
			other.cancel()
			delete(a.leases, other)
			continue
		}
		other.node = next
		owners = append(owners, other)
	}
	slices.SortFunc(owners, func(x, y *Lease) int { return cmp.Compare(x.seq, y.seq) })
	l.node = next
	a.enclosing[next] = owners
	a.sweepLocked()
	ready := a.flushLocked()
	a.treeMu.Unlock()

	runAll(ready)

	a.treeMu.Lock()
	delete(a.enclosing, next)
	a.treeMu.Unlock()
	return next, true
}
