// Package dom provides the terminal visual nodes widgets resolve to.
//
// Terminal nodes are plain *html.Node values from golang.org/x/net/html. This
// package adds the small set of operations the engine needs on top of them:
// construction, additive attribute and class handling, in-place replacement,
// ancestry queries and serialization.
package dom

import (
	"bytes"
	"io"
	"strings"

	"github.com/yosssi/gohtml"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element creates an element node. Attributes are given as key/value pairs;
// a trailing key without value is ignored.
func Element(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		SetAttr(n, attrs[i], attrs[i+1])
	}
	return n
}

// Text creates a text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// TextElement creates an element holding a single text node.
func TextElement(tag, text string, attrs ...string) *html.Node {
	n := Element(tag, attrs...)
	n.AppendChild(Text(text))
	return n
}

// Append appends children to parent, detaching each from its previous parent
// first. Nil children are skipped.
func Append(parent *html.Node, children ...*html.Node) {
	for _, child := range children {
		if child == nil {
			continue
		}
		Detach(child)
		parent.AppendChild(child)
	}
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// ReplaceChildren replaces all children of parent with the given nodes.
func ReplaceChildren(parent *html.Node, children ...*html.Node) {
	for c := parent.FirstChild; c != nil; c = parent.FirstChild {
		parent.RemoveChild(c)
	}
	Append(parent, children...)
}

// Replace puts next where old is in old's parent. It reports false when old
// has no parent, in which case nothing changes.
func Replace(old, next *html.Node) bool {
	parent := old.Parent
	if parent == nil {
		return false
	}
	if old == next {
		return true
	}
	Detach(next)
	parent.InsertBefore(next, old)
	parent.RemoveChild(old)
	return true
}

// Contains reports whether n is ancestor or a descendant of ancestor.
func Contains(ancestor, n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Children returns the element children of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits n and its descendants in document order until visit returns false.
func Walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !Walk(c, visit) {
			return false
		}
	}
	return true
}

// FindByClass returns the first element in n's subtree carrying class.
func FindByClass(n *html.Node, class string) *html.Node {
	var found *html.Node
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && HasClass(c, class) {
			found = c
			return false
		}
		return true
	})
	return found
}

// InnerText concatenates the text nodes in n's subtree.
func InnerText(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// Render writes n as HTML.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// RenderString renders n as compact HTML.
func RenderString(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// Pretty renders n as indented HTML.
func Pretty(n *html.Node) string {
	return gohtml.Format(RenderString(n))
}
