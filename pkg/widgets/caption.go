package widgets

import (
	"golang.org/x/net/html"

	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/dom"
)

// Caption is a title and a body paragraph. An empty title renders as a
// hidden placeholder so that the body keeps its position.
type Caption struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (c Caption) ClassName() string { return "caption" }

func (c Caption) Build(core.BuildContext) core.Widget {
	title, body := c.parts()
	return GroupOf(
		Visibility{Visible: title != nil, Child: core.Node(title)},
		core.Node(body),
	)
}

// parts returns the title and body paragraphs. title is nil when the caption
// has no title.
func (c Caption) parts() (title, body *html.Node) {
	if c.Title != "" {
		title = dom.TextElement("p", c.Title, "class", "caption-title")
	}
	body = dom.TextElement("p", c.Body, "class", "caption-body")
	return title, body
}

// ContentAndCaption frames Content with an optional caption: the caption
// title goes above the content and the body below it.
type ContentAndCaption struct {
	Content core.Widget
	Caption *Caption
}

func (c ContentAndCaption) ClassName() string { return "content-and-caption" }

func (c ContentAndCaption) Build(ctx core.BuildContext) core.Widget {
	return core.Node(captioned(c.Caption, core.RenderIfWidget(ctx, c.Content)))
}

// captioned returns a container holding content between the title and body
// of caption. A nil caption leaves content alone in the container.
func captioned(caption *Caption, content ...*html.Node) *html.Node {
	container := dom.Element("div")
	var title, body *html.Node
	if caption != nil {
		title, body = caption.parts()
	}
	dom.Append(container, title)
	dom.Append(container, content...)
	dom.Append(container, body)
	return container
}
