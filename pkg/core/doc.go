// Package core provides the widget contract, the render loop and the root
// anchor that owns the mounted visual tree.
//
// # Widgets
//
// A Widget is a description of something displayable. Its Build method returns
// either another Widget or a Terminal wrapping a finished *html.Node. Render
// resolves a widget by calling Build until a Terminal comes back:
//
//	type Greeting struct {
//	    Name string
//	}
//
//	func (g Greeting) Build(ctx core.BuildContext) core.Widget {
//	    return core.Node(dom.TextElement("p", "Hello, "+g.Name))
//	}
//
//	node := core.Render(ctx, Greeting{Name: "world"})
//
// Widgets hold logical state only; they never keep a reference to the node
// they produced. Build is synchronous and must not block.
//
// # Intrinsic classes
//
// A widget implementing ClassNamer contributes its class to the node it
// resolves to. Classes are added innermost first, so a Caption that builds a
// Group renders as class="group caption".
//
// # Root anchor
//
// Mount renders a widget tree into a target node and returns the Anchor that
// owns it. Only one anchor may be live at a time; Teardown releases it.
// Components that need attachment tracking receive the anchor through their
// BuildContext rather than through global state:
//
//	anchor, err := core.Mount(layout, target)
//	if err != nil {
//	    return err
//	}
//	defer anchor.Teardown()
package core
