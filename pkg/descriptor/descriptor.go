// Package descriptor reads serialized layouts and turns them into widget
// trees.
//
// A layout is a tree of Descriptors, each naming a widget kind, a flat set of
// attributes, and either child descriptors or literal text. Layouts are
// written as XML, JSON or YAML:
//
//	<group version="1.0">
//	    <clock format="h:mm"/>
//	    <clock format="h:mm a" html:class="secondary"/>
//	</group>
//
// A Registry maps each kind to the factory that builds its widget.
package descriptor

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HTMLPrefix marks attributes that are passed through to the rendered node
// instead of being interpreted by the widget's factory.
const HTMLPrefix = "html:"

// Descriptor is one node of a serialized layout.
type Descriptor struct {
	Kind       string
	Attributes map[string]string
	Children   []*Descriptor
	// Text is the literal text content, trimmed.
	Text string
}

// Attr returns the named attribute.
func (d *Descriptor) Attr(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	v, ok := d.Attributes[name]
	return v, ok
}

// AttrOr returns the named attribute, or def when it is absent or empty.
func (d *Descriptor) AttrOr(name, def string) string {
	if v, ok := d.Attr(name); ok && v != "" {
		return v
	}
	return def
}

// Bool parses the named attribute as a boolean. An absent attribute yields
// def; a present attribute with an empty value means true, as in HTML.
func (d *Descriptor) Bool(name string, def bool) (bool, error) {
	v, ok := d.Attr(name)
	if !ok {
		return def, nil
	}
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("attribute %s=%q: not a boolean", name, v)
	}
	return b, nil
}

// Int parses the named attribute as an integer.
func (d *Descriptor) Int(name string, def int) (int, error) {
	v, ok := d.Attr(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("attribute %s=%q: not an integer", name, v)
	}
	return n, nil
}

// Duration parses the named attribute as a duration. Plain numbers are
// counted in unit; anything else must be a Go duration such as "1m30s".
// Durations must be positive.
func (d *Descriptor) Duration(name string, def, unit time.Duration) (time.Duration, error) {
	v, ok := d.Attr(name)
	if !ok || v == "" {
		return def, nil
	}
	var dur time.Duration
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		dur = time.Duration(f * float64(unit))
	} else if dur, err = time.ParseDuration(v); err != nil {
		return def, fmt.Errorf("attribute %s=%q: not a duration", name, v)
	}
	if dur <= 0 {
		return def, fmt.Errorf("attribute %s=%q: must be positive", name, v)
	}
	return dur, nil
}

// FirstChild returns the first child, or nil.
func (d *Descriptor) FirstChild() *Descriptor {
	if d == nil || len(d.Children) == 0 {
		return nil
	}
	return d.Children[0]
}

// Typed returns the first child of the given kind, or nil.
func (d *Descriptor) Typed(kind string) *Descriptor {
	if d == nil {
		return nil
	}
	for _, c := range d.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// Named returns the widget wrapped by the child called name:
//
//	<content-and-caption>
//	    <content><local-image src="a.png"/></content>
//	</content-and-caption>
//
// Named("content") returns the local-image descriptor.
func (d *Descriptor) Named(name string) *Descriptor {
	return d.Typed(name).FirstChild()
}

// ChildText returns the text of the child called name.
func (d *Descriptor) ChildText(name string) string {
	if c := d.Typed(name); c != nil {
		return c.Text
	}
	return ""
}

// Field returns the named value, given either as an attribute or as the text
// of a child element. The attribute wins when both are present.
func (d *Descriptor) Field(name string) string {
	if v, ok := d.Attr(name); ok {
		return v
	}
	return d.ChildText(name)
}

// HTMLAttributes returns the pass-through attributes with the prefix
// stripped, or nil when there are none.
func (d *Descriptor) HTMLAttributes() map[string]string {
	var out map[string]string
	for k, v := range d.Attributes {
		name, ok := strings.CutPrefix(k, HTMLPrefix)
		if !ok || name == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[name] = v
	}
	return out
}

func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	return fmt.Sprintf("<%s> (%d attributes, %d children)", d.Kind, len(d.Attributes), len(d.Children))
}
