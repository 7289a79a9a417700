package descriptor

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/signage/pkg/errors"
)

// Format names a layout serialization.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by a file name's extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML, true
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// Parse decodes a layout in the given format.
func Parse(data []byte, format Format) (*Descriptor, error) {
	switch format {
	case FormatXML:
		return ParseXML(data)
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	}
	return nil, fmt.Errorf("unsupported layout format %q", format)
}

// ParseFile reads and decodes a layout file, picking the format from its
// extension.
func ParseFile(path string) (*Descriptor, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, fmt.Errorf("%s: cannot tell layout format from extension", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	d, err := Parse(data, format)
	if err != nil {
		var perr *errors.ParseError
		if stderrors.As(err, &perr) {
			perr.Source = path
		}
		return nil, err
	}
	return d, nil
}

// ParseXML decodes an XML layout. Element names become kinds, attributes keep
// their namespace prefix ("html:class"), and character data becomes Text.
func ParseXML(data []byte) (*Descriptor, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	// prefixes maps declared namespace URIs back to the prefix used in the
	// document, so html:class stays html:class even when html is declared.
	prefixes := make(map[string]string)

	var root *Descriptor
	var stack []*Descriptor
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &errors.ParseError{Format: string(FormatXML), Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					prefixes[a.Value] = a.Name.Local
				}
			}
			d := &Descriptor{Kind: t.Name.Local, Attributes: make(map[string]string)}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				d.Attributes[qualified(a.Name, prefixes)] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &errors.ParseError{Format: string(FormatXML), Err: fmt.Errorf("multiple root elements")}
				}
				root = d
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, d)
			}
			stack = append(stack, d)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			if text := strings.TrimSpace(string(t)); text != "" {
				cur := stack[len(stack)-1]
				if cur.Text != "" {
					cur.Text += " "
				}
				cur.Text += text
			}
		}
	}
	if root == nil {
		return nil, &errors.ParseError{Format: string(FormatXML), Err: fmt.Errorf("no root element")}
	}
	return root, nil
}

func qualified(name xml.Name, prefixes map[string]string) string {
	if name.Space == "" {
		return name.Local
	}
	if prefix, ok := prefixes[name.Space]; ok {
		return prefix + ":" + name.Local
	}
	return name.Space + ":" + name.Local
}

// ParseJSON decodes a JSON layout. See fromValue for the accepted shape.
func ParseJSON(data []byte) (*Descriptor, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &errors.ParseError{Format: string(FormatJSON), Err: err}
	}
	d, err := fromValue(v)
	if err != nil {
		return nil, &errors.ParseError{Format: string(FormatJSON), Err: err}
	}
	return d, nil
}

// ParseYAML decodes a YAML layout of the same shape as JSON layouts.
func ParseYAML(data []byte) (*Descriptor, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, &errors.ParseError{Format: string(FormatYAML), Err: err}
	}
	d, err := fromValue(v)
	if err != nil {
		return nil, &errors.ParseError{Format: string(FormatYAML), Err: err}
	}
	return d, nil
}

// fromValue converts a decoded JSON or YAML object into a Descriptor:
//
//	{
//	  "kind": "content-and-caption",     // or "type"
//	  "attributes": {"html:class": "wide"},
//	  "content": {"kind": "remote-image", "src": "https://..."},
//	  "caption": {"title": "Open day", "body": "Saturday"},
//	  "children": [...]                   // or a string, stored as Text
//	}
//
// Scalar fields other than the reserved ones become attributes. Object
// fields become children named after the field: an object with its own kind
// is wrapped, so Named("content") finds it, and an object without one
// becomes the child itself, so Field("title") reads caption fields.
func fromValue(v any) (*Descriptor, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("widget must be an object, got %T", v)
	}
	kind, _ := stringField(obj, "kind")
	if kind == "" {
		kind, _ = stringField(obj, "type")
	}
	if kind == "" {
		return nil, fmt.Errorf("widget object has no kind")
	}
	d, err := objectBody(kind, obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return d, nil
}

func objectBody(kind string, obj map[string]any) (*Descriptor, error) {
	d := &Descriptor{Kind: kind, Attributes: make(map[string]string)}

	if attrs, ok := obj["attributes"]; ok {
		m, ok := attrs.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("attributes must be an object")
		}
		for k, v := range m {
			s, err := scalar(v)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", k, err)
			}
			d.Attributes[k] = s
		}
	}

	// Sorted so that named children come out in a stable order.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		v := obj[k]
		switch k {
		case "kind", "type", "attributes":
			continue
		case "text":
			s, err := scalar(v)
			if err != nil {
				return nil, fmt.Errorf("text: %w", err)
			}
			d.Text = s
			continue
		case "children":
			if err := appendChildren(d, v); err != nil {
				return nil, err
			}
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			child, err := namedChild(k, val)
			if err != nil {
				return nil, err
			}
			d.Children = append(d.Children, child)
		case []any:
			wrapper := &Descriptor{Kind: k, Attributes: map[string]string{}}
			if err := appendChildren(wrapper, val); err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			d.Children = append(d.Children, wrapper)
		default:
			s, err := scalar(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			d.Attributes[k] = s
		}
	}
	return d, nil
}

func namedChild(name string, obj map[string]any) (*Descriptor, error) {
	kind, _ := stringField(obj, "kind")
	if kind == "" {
		kind, _ = stringField(obj, "type")
	}
	if kind == "" {
		d, err := objectBody(name, obj)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return d, nil
	}
	inner, err := fromValue(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Descriptor{Kind: name, Attributes: map[string]string{}, Children: []*Descriptor{inner}}, nil
}

func appendChildren(d *Descriptor, v any) error {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		d.Text = strings.TrimSpace(val)
		return nil
	case []any:
		for i, item := range val {
			child, err := fromValue(item)
			if err != nil {
				return fmt.Errorf("children[%d]: %w", i, err)
			}
			d.Children = append(d.Children, child)
		}
		return nil
	}
	return fmt.Errorf("children must be a list or a string, got %T", v)
}

func stringField(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	return s, ok
}

// scalar formats a decoded scalar as an attribute value.
func scalar(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(val), nil
	case fmt.Stringer:
		return val.String(), nil
	}
	return "", fmt.Errorf("expected a scalar, got %T", v)
}
