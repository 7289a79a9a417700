package widgets

import (
	"maps"

	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/errors"
	"github.com/go-drift/signage/pkg/refresh"
)

// Group renders its children into a single container, in order.
type Group struct {
	Children []core.Widget
}

// GroupOf returns a Group of the given children.
func GroupOf(children ...core.Widget) Group {
	return Group{Children: children}
}

func (g Group) ClassName() string { return "group" }

func (g Group) Build(ctx core.BuildContext) core.Widget {
	container := dom.Element("div")
	for _, child := range g.Children {
		dom.Append(container, core.RenderIfWidget(ctx, child))
	}
	return core.Node(container)
}

// Visibility shows Child when Visible is set and a hidden placeholder
// otherwise. The placeholder keeps the position in the parent stable.
type Visibility struct {
	Visible bool
	Child   core.Widget
}

func (v Visibility) Build(core.BuildContext) core.Widget {
	if !v.Visible {
		return core.Node(dom.Placeholder())
	}
	return v.Child
}

// Dummy passes its child through unchanged. It exists to stand between an
// AttributeInjector and a refresh scheduler, and to group a rotating page's
// content under one class.
type Dummy struct {
	Child core.Widget
}

func (d Dummy) ClassName() string { return "dummy" }

func (d Dummy) Build(core.BuildContext) core.Widget { return d.Child }

// AttributeInjector applies attributes to the node its child resolves to.
// The class attribute is merged with the classes already present; any other
// attribute overwrites.
type AttributeInjector struct {
	child core.Widget
	attrs map[string]string
}

// NewAttributeInjector wraps child. It fails with *errors.NestingError when
// child is itself a refresh scheduler: the scheduler replaces its node on
// every rebuild, and attributes applied from directly above it would not
// belong to any widget that outlives the swap.
func NewAttributeInjector(child core.Widget, attrs map[string]string) (*AttributeInjector, error) {
	switch child.(type) {
	case refresh.Refresh, *refresh.Refresh:
		return nil, &errors.NestingError{
			Parent: "widgets.AttributeInjector",
			Child:  core.TypeName(child),
		}
	}
	return &AttributeInjector{child: child, attrs: maps.Clone(attrs)}, nil
}

// Attrs returns a copy of the injected attributes.
func (a *AttributeInjector) Attrs() map[string]string {
	return maps.Clone(a.attrs)
}

// Child returns the wrapped widget.
func (a *AttributeInjector) Child() core.Widget { return a.child }

func (a *AttributeInjector) Build(ctx core.BuildContext) core.Widget {
	node := core.Render(ctx, a.child)
	dom.ApplyAttrs(node, a.attrs)
	return core.Node(node)
}
