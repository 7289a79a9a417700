package descriptor_test

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/signage/pkg/descriptor"
	"github.com/go-drift/signage/pkg/errors"
)

const layoutXML = `<?xml version="1.0"?>
<group version="1.0">
  <clock format="h:mm"/>
  <clock format="h:mm a" html:class="secondary"/>
  <caption>
    <title>Open day</title>
    <body>Saturday 10am</body>
  </caption>
</group>`

const layoutJSON = `{
  "kind": "group",
  "version": "1.0",
  "children": [
    {"kind": "clock", "format": "h:mm"},
    {"kind": "clock", "attributes": {"format": "h:mm a", "html:class": "secondary"}},
    {"kind": "caption", "title": "Open day", "body": "Saturday 10am"}
  ]
}`

const layoutYAML = `
kind: group
version: "1.0"
children:
  - kind: clock
    format: "h:mm"
  - kind: clock
    format: "h:mm a"
    html:class: secondary
  - type: caption
    title: Open day
    body: Saturday 10am
`

func TestParseXML(t *testing.T) {
	d, err := descriptor.ParseXML([]byte(layoutXML))
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}
	want := &descriptor.Descriptor{
		Kind:       "group",
		Attributes: map[string]string{"version": "1.0"},
		Children: []*descriptor.Descriptor{
			{Kind: "clock", Attributes: map[string]string{"format": "h:mm"}},
			{Kind: "clock", Attributes: map[string]string{"format": "h:mm a", "html:class": "secondary"}},
			{Kind: "caption", Attributes: map[string]string{}, Children: []*descriptor.Descriptor{
				{Kind: "title", Attributes: map[string]string{}, Text: "Open day"},
				{Kind: "body", Attributes: map[string]string{}, Text: "Saturday 10am"},
			}},
		},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestParseXML_DeclaredPrefixIsKept(t *testing.T) {
	src := `<group xmlns:html="http://www.w3.org/1999/xhtml" html:id="main"/>`
	d, err := descriptor.ParseXML([]byte(src))
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"html:id": "main"}, d.Attributes); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseXML_Errors(t *testing.T) {
	for name, src := range map[string]string{
		"empty":     ``,
		"unclosed":  `<group><clock></group>`,
		"two roots": `<a/><b/>`,
		"only text": `hello`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := descriptor.ParseXML([]byte(src))
			var perr *errors.ParseError
			if !stderrors.As(err, &perr) || perr.Format != "xml" {
				t.Errorf("err = %v, want xml ParseError", err)
			}
		})
	}
}

func TestParseFormatsAgree(t *testing.T) {
	fromJSON, err := descriptor.ParseJSON([]byte(layoutJSON))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	fromYAML, err := descriptor.ParseYAML([]byte(layoutYAML))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Errorf("JSON and YAML disagree (-json +yaml):\n%s", diff)
	}

	caption := fromJSON.Children[2]
	if caption.Field("title") != "Open day" || caption.Field("body") != "Saturday 10am" {
		t.Errorf("caption fields = %v", caption.Attributes)
	}
	if got := fromJSON.Children[1].HTMLAttributes(); got["class"] != "secondary" {
		t.Errorf("HTMLAttributes() = %v", got)
	}
}

func TestParseJSON_NamedChildren(t *testing.T) {
	src := `{
	  "kind": "content-and-caption",
	  "content": {"kind": "remote-image", "src": "https://example.org/a.png"},
	  "caption": {"title": "A", "body": "B"},
	  "text": "ignored by most widgets"
	}`
	d, err := descriptor.ParseJSON([]byte(src))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	content := d.Named("content")
	if content == nil || content.Kind != "remote-image" || content.Attributes["src"] != "https://example.org/a.png" {
		t.Errorf("Named(content) = %v", content)
	}
	if c := d.Typed("caption"); c == nil || c.Field("title") != "A" {
		t.Errorf("Typed(caption) = %v", c)
	}
	if d.Text != "ignored by most widgets" {
		t.Errorf("Text = %q", d.Text)
	}
}

func TestParseJSON_ScalarsBecomeStrings(t *testing.T) {
	d, err := descriptor.ParseJSON([]byte(`{"kind": "refresh", "period": 30, "visible": false, "ratio": 1.5}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	want := map[string]string{"period": "30", "visible": "false", "ratio": "1.5"}
	if diff := cmp.Diff(want, d.Attributes); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJSON_Errors(t *testing.T) {
	for name, src := range map[string]string{
		"syntax":        `{"kind": `,
		"not an object": `[1, 2]`,
		"no kind":       `{"format": "h:mm"}`,
		"bad child":     `{"kind": "group", "children": [3]}`,
		"bad attrs":     `{"kind": "group", "attributes": [1]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := descriptor.ParseJSON([]byte(src))
			var perr *errors.ParseError
			if !stderrors.As(err, &perr) || perr.Format != "json" {
				t.Errorf("err = %v, want json ParseError", err)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"layout.xml":  layoutXML,
		"layout.json": layoutJSON,
		"layout.yml":  layoutYAML,
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		d, err := descriptor.ParseFile(path)
		if err != nil {
			t.Errorf("ParseFile(%s): %v", name, err)
			continue
		}
		if d.Kind != "group" || len(d.Children) != 3 {
			t.Errorf("ParseFile(%s) = %v", name, d)
		}
	}

	broken := filepath.Join(dir, "broken.json")
	os.WriteFile(broken, []byte("{"), 0o644)
	_, err := descriptor.ParseFile(broken)
	var perr *errors.ParseError
	if !stderrors.As(err, &perr) || perr.Source != broken {
		t.Errorf("err = %v, want ParseError with source", err)
	}

	if _, err := descriptor.ParseFile(filepath.Join(dir, "layout.txt")); err == nil {
		t.Error("unknown extension accepted")
	}
}

func TestDescriptorAccessors(t *testing.T) {
	d := &descriptor.Descriptor{
		Kind: "refresh",
		Attributes: map[string]string{
			"period":  "30",
			"delay":   "1m30s",
			"hidden":  "",
			"visible": "false",
			"count":   "x",
			"zero":    "0",
		},
	}

	if got, err := d.Duration("period", time.Minute, time.Second); err != nil || got != 30*time.Second {
		t.Errorf("Duration(period) = %v, %v", got, err)
	}
	if got, err := d.Duration("delay", 0, time.Second); err != nil || got != 90*time.Second {
		t.Errorf("Duration(delay) = %v, %v", got, err)
	}
	if got, err := d.Duration("missing", time.Minute, time.Second); err != nil || got != time.Minute {
		t.Errorf("Duration(missing) = %v, %v", got, err)
	}
	if _, err := d.Duration("zero", time.Minute, time.Second); err == nil {
		t.Error("Duration(zero) accepted a non-positive period")
	}
	if got, err := d.Bool("hidden", false); err != nil || !got {
		t.Errorf("Bool(hidden) = %v, %v", got, err)
	}
	if got, err := d.Bool("visible", true); err != nil || got {
		t.Errorf("Bool(visible) = %v, %v", got, err)
	}
	if _, err := d.Int("count", 0); err == nil {
		t.Error("Int(count) accepted a non-number")
	}
	if got := d.AttrOr("missing", "fallback"); got != "fallback" {
		t.Errorf("AttrOr = %q", got)
	}

	var none *descriptor.Descriptor
	if none.FirstChild() != nil || none.Named("x") != nil || none.ChildText("x") != "" {
		t.Error("accessors on nil descriptor should be empty")
	}
}
