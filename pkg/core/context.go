package core

import "context"

// BuildContext carries the services a widget may need while building: the
// cancellation scope of the subtree being built, the root anchor for
// attachment tracking, and the clock.
type BuildContext interface {
	// Context is cancelled when the subtree being built is torn down.
	Context() context.Context
	// Anchor returns the root anchor, or nil when rendering detached.
	Anchor() *Anchor
	// Clock returns the time source for schedulers.
	Clock() Clock
}

type buildContext struct {
	ctx    context.Context
	anchor *Anchor
	clock  Clock
}

func (c *buildContext) Context() context.Context { return c.ctx }
func (c *buildContext) Anchor() *Anchor           { return c.anchor }
func (c *buildContext) Clock() Clock              { return c.clock }

// WithContext returns a BuildContext identical to parent but scoped to ctx.
func WithContext(parent BuildContext, ctx context.Context) BuildContext {
	return &buildContext{ctx: ctx, anchor: parent.Anchor(), clock: parent.Clock()}
}

// Detached returns a BuildContext without an anchor. Widgets rendered with it
// build normally, but refresh schedulers never start ticking because nothing
// can report their node as attached.
func Detached(ctx context.Context) BuildContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &buildContext{ctx: ctx, clock: SystemClock{}}
}
