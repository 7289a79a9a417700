package cmd

import (
	"fmt"
	"path"
	"strconv"
	"time"

	"golang.org/x/net/html"

	"github.com/go-drift/signage/cmd/signage/internal/config"
	"github.com/go-drift/signage/pkg/api"
	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/descriptor"
	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/widgets"
)

// newRegistry returns the widget registry for cfg, backed by the configured
// API.
func newRegistry(cfg *config.Resolved) *descriptor.Registry {
	env := widgets.NewEnv(api.NewClient(cfg.APIBase, cfg.Timeout))
	env.StaticRoot = cfg.StaticRoot
	env.MediaDir = cfg.MediaDir
	env.DepartmentPeriod = cfg.DepartmentPeriod
	env.ContentPeriod = cfg.ContentPeriod
	return widgets.NewRegistry(env)
}

// loadLayout parses the layout file at path and deserializes it.
func loadLayout(reg *descriptor.Registry, path string) (core.Widget, error) {
	d, err := descriptor.ParseFile(path)
	if err != nil {
		return nil, err
	}
	w, err := reg.Deserialize(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// document builds the page skeleton a layout is mounted into. It returns the
// document and the element that receives the widget tree.
func document(cfg *config.Resolved, reload time.Duration) (doc, root *html.Node) {
	head := dom.Element("head")
	dom.Append(head,
		dom.Element("meta", "charset", "utf-8"),
		dom.TextElement("title", "Signage"),
		dom.Element("link", "rel", "stylesheet", "href", path.Join(cfg.StaticRoot, path.Base(widgets.DefaultStylesheet))),
	)
	if secs := int(reload / time.Second); secs > 0 {
		dom.Append(head, dom.Element("meta", "http-equiv", "refresh", "content", strconv.Itoa(secs)))
	}

	root = dom.Element("div", "id", "root")
	body := dom.Element("body")
	dom.Append(body, root)

	page := dom.Element("html")
	dom.Append(page, head, body)

	doc = &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(page)
	return doc, root
}
