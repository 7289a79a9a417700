// Package widgets provides the widgets signage layouts are composed of.
//
// The package contains compositors that arrange other widgets (Group,
// Visibility, AttributeInjector, Rotation, Paginated, Page), live widgets
// that keep themselves current (Clock, Department, ContentStream) and leaf
// widgets that display a single piece of content (Caption, Text, Person,
// images, links, QR codes, video).
//
// # Widget Construction
//
// Widgets are plain values. The struct literal is the canonical form and
// exposes every field:
//
//	clock := widgets.Clock{
//	    Format: "h:mm a",
//	}
//
// Helpers exist where a literal is noisy:
//
//	group := widgets.GroupOf(
//	    widgets.Clock{Format: "h:mm"},
//	    widgets.Caption{Title: "Open day", Body: "Saturday 10am"},
//	)
//
// NewAttributeInjector is the only constructor that can fail: it refuses to
// wrap a refresh scheduler directly, because the attributes it applies
// would be lost on the scheduler's first swap. Wrap the scheduler's owner
// instead, or put a Dummy between the two:
//
//	inj, err := widgets.NewAttributeInjector(widgets.Dummy{Child: live}, attrs)
//
// # Layouts
//
// NewRegistry returns a descriptor registry with every widget kind of this
// package registered, so that layouts can be loaded from XML, JSON or YAML:
//
//	reg := widgets.NewRegistry(widgets.NewEnv(client))
//	root, err := reg.Deserialize(layout)
//
// # Classes
//
// Most widgets carry an intrinsic class (group, caption, clock, ...). The
// class is added to the node the widget resolves to, together with the
// classes of any enclosing widgets, innermost first.
package widgets
