package widgets

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/go-drift/signage/pkg/api"
	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/dom"
)

// Person shows one member of staff on their own. Unlike a Lecturer entry,
// every detail is a separate paragraph and details that are not set leave a
// hidden placeholder, so that people laid out side by side line up.
type Person struct {
	api.Lecturer
	// Image is the address of the person's photo. Empty hides it.
	Image string
}

func (p Person) ClassName() string { return "person" }

func (p Person) Build(core.BuildContext) core.Widget {
	heading := strings.TrimSpace(p.Title + " " + p.Name)
	children := []core.Widget{
		shown(heading, dom.TextElement("h3", heading, "class", "person-header")),
		shown(p.Image, dom.Element("img", "src", p.Image, "class", "person-image")),
	}
	details := []struct{ label, value, class string }{
		{"Position", p.Position, "person-position"},
		{"Office Hours", p.OfficeHours, "person-hours"},
		{"Office Location", p.OfficeLocation, "person-location"},
		{"Email", p.Email, "person-email"},
		{"Phone", p.Phone, "person-phone"},
	}
	for _, d := range details {
		children = append(children, shown(d.value, dom.TextElement("p", d.label+": "+d.value, "class", d.class)))
	}
	return GroupOf(children...)
}

func shown(value string, n *html.Node) core.Widget {
	return Visibility{Visible: value != "", Child: core.Node(n)}
}
