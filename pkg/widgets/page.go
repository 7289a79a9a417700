package widgets

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/errors"
)

// DefaultStylesheet is the stylesheet a Page links into its shadow root.
const DefaultStylesheet = "/static/display.css"

// Page is a top-level screen. Its children are placed in an open shadow
// root (a declarative shadow DOM template) that links the display
// stylesheet, isolating the page from the styles of the document that
// hosts it. Pages must not be nested; a nested page is reported once it is
// mounted.
type Page struct {
	Children []core.Widget
	// Inline renders the children directly into the page container, without
	// a shadow root or stylesheet.
	Inline bool
	// Stylesheet overrides DefaultStylesheet.
	Stylesheet string
}

func (p Page) ClassName() string { return "page" }

func (p Page) Build(ctx core.BuildContext) core.Widget {
	container := dom.Element("div")
	host := container
	if !p.Inline {
		sheet := p.Stylesheet
		if sheet == "" {
			sheet = DefaultStylesheet
		}
		host = dom.Element("template", "shadowrootmode", "open")
		dom.Append(host, dom.Element("link", "rel", "stylesheet", "href", sheet))
		dom.Append(container, host)
	}
	for _, child := range p.Children {
		dom.Append(host, core.RenderIfWidget(ctx, child))
	}
	if anchor := ctx.Anchor(); anchor != nil {
		anchor.Watch(container, func() { checkPageNesting(anchor, container) })
	}
	return core.Node(container)
}

func checkPageNesting(anchor *core.Anchor, page *html.Node) {
	var nested bool
	anchor.Update(func(*html.Node) {
		for n := page.Parent; n != nil; n = n.Parent {
			if isShadowRoot(n) {
				nested = true
				return
			}
		}
	})
	if nested {
		errors.Report(&errors.SignageError{
			Op:     "widgets.Page",
			Kind:   errors.KindNesting,
			Widget: "widgets.Page",
			Err:    &errors.NestingError{Parent: "widgets.Page", Child: "widgets.Page"},
		})
	}
}

func isShadowRoot(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Data != "template" {
		return false
	}
	_, ok := dom.GetAttr(n, "shadowrootmode")
	return ok
}

// HTML renders a fragment of raw markup. A fragment with a single top-level
// element resolves to that element; anything else is wrapped in a div.
type HTML struct {
	Source string
}

func (h HTML) ClassName() string { return "html" }

func (h HTML) Build(core.BuildContext) core.Widget {
	nodes, err := ParseFragment(h.Source)
	if err != nil {
		panic(err)
	}
	var elements []*html.Node
	for _, n := range nodes {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
			continue
		}
		elements = append(elements, n)
	}
	if len(elements) == 1 && elements[0].Type == html.ElementNode {
		return core.Node(elements[0])
	}
	container := dom.Element("div")
	dom.Append(container, elements...)
	return core.Node(container)
}

// ParseFragment parses markup as the content of a div.
func ParseFragment(src string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(src), context)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}
	return nodes, nil
}

// Style injects a stylesheet.
type Style struct {
	CSS string
}

func (s Style) Build(core.BuildContext) core.Widget {
	return core.Node(dom.TextElement("style", s.CSS))
}

// Script injects an inline script.
type Script struct {
	Source string
}

func (s Script) Build(core.BuildContext) core.Widget {
	return core.Node(dom.TextElement("script", s.Source))
}
