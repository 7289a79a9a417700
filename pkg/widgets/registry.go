package widgets

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/go-drift/signage/pkg/api"
	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/descriptor"
)

// NewRegistry returns a registry with every widget kind of this package
// registered. Descriptor attributes carrying the html: prefix are applied
// through an AttributeInjector.
func NewRegistry(env Env) *descriptor.Registry {
	r := descriptor.NewRegistry()

	group := func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		children, err := dec.Children(d)
		if err != nil {
			return nil, err
		}
		return Group{Children: children}, nil
	}
	r.Register("group", group)
	r.Register("container", group)

	visibility := func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		visible, err := d.Bool("visible", true)
		if err != nil {
			return nil, err
		}
		child, err := single(dec, d)
		if err != nil {
			return nil, err
		}
		return Visibility{Visible: visible, Child: child}, nil
	}
	r.Register("visibility", visibility)
	r.Register("conditional-visibility", visibility)

	attributes := func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		child, err := single(dec, d)
		if err != nil {
			return nil, err
		}
		attrs := maps.Clone(d.Attributes)
		maps.DeleteFunc(attrs, func(k, _ string) bool {
			return strings.HasPrefix(k, descriptor.HTMLPrefix)
		})
		return injector(child, attrs)
	}
	r.Register("attributes", attributes)
	r.Register("attribute-injector", attributes)

	r.Register("dummy", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		child, err := single(dec, d)
		if err != nil {
			return nil, err
		}
		return Dummy{Child: child}, nil
	})

	r.Register("refresh", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		period, err := d.Duration("period", 300*time.Second, time.Second)
		if err != nil {
			return nil, err
		}
		child, err := single(dec, d)
		if err != nil {
			return nil, err
		}
		return StaticRefresh{Period: period, Child: child}, nil
	})

	r.Register("rotation", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		period, err := d.Duration("secs-per-page", DefaultPageDuration, time.Second)
		if err != nil {
			return nil, err
		}
		children, err := dec.Children(d)
		if err != nil {
			return nil, err
		}
		return Rotation{Children: children, Period: period}, nil
	})

	r.Register("paginated", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		size, err := d.Int("page-size", 1)
		if err != nil {
			return nil, err
		}
		if size < 1 {
			return nil, dec.Errorf("page-size must be at least 1, got %d", size)
		}
		page, err := d.Int("page", 0)
		if err != nil {
			return nil, err
		}
		period, err := d.Duration("secs-per-page", 0, time.Second)
		if err != nil {
			return nil, err
		}
		children, err := dec.Children(d)
		if err != nil {
			return nil, err
		}
		return Paginated{Children: children, PageSize: size, Page: page, Period: period}, nil
	})

	r.Register("page", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		shadow, err := d.Bool("shadow-dom", true)
		if err != nil {
			return nil, err
		}
		children, err := dec.Children(d)
		if err != nil {
			return nil, err
		}
		return Page{Children: children, Inline: !shadow, Stylesheet: env.stylesheet()}, nil
	})

	r.Register("html", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		src := d.AttrOr("source", d.Text)
		if _, err := ParseFragment(src); err != nil {
			return nil, err
		}
		return HTML{Source: src}, nil
	})

	r.Register("style", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		return Style{CSS: d.Text}, nil
	})

	r.Register("script", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		return Script{Source: d.Text}, nil
	})

	r.Register("caption", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		return Caption{Title: d.Field("title"), Body: d.Field("body")}, nil
	})

	r.Register("content-and-caption", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		content, err := dec.Child(d.Named("content"))
		if err != nil {
			return nil, err
		}
		return ContentAndCaption{Content: content, Caption: captionOf(d)}, nil
	})

	r.Register("clock", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		period, err := d.Duration("period", time.Second, time.Second)
		if err != nil {
			return nil, err
		}
		return Clock{Format: d.AttrOr("format", DefaultClockFormat), Period: period}, nil
	})

	department := func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		if env.Lecturers == nil {
			return nil, fmt.Errorf("no lecturer source configured")
		}
		period, err := d.Duration("period", env.departmentPeriod(), time.Second)
		if err != nil {
			return nil, err
		}
		return NewDepartment(env.Lecturers, period), nil
	}
	r.Register("department", department)
	r.Register("department-roster", department)

	r.Register("person", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		id, err := d.Int("id", 0)
		if err != nil {
			return nil, err
		}
		name, err := required(d, "name")
		if err != nil {
			return nil, err
		}
		return Person{
			Lecturer: api.Lecturer{
				ID:             id,
				Title:          d.Field("title"),
				Name:           name,
				Position:       d.Field("position"),
				OfficeHours:    d.Field("office-hours"),
				OfficeLocation: d.Field("office-location"),
				Email:          d.Field("email"),
				Phone:          d.Field("phone"),
			},
			Image: d.Field("image"),
		}, nil
	})

	r.Register("content-stream", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		if env.Content == nil {
			return nil, fmt.Errorf("no content source configured")
		}
		period, err := d.Duration("period", env.contentPeriod(), time.Second)
		if err != nil {
			return nil, err
		}
		return NewContentStream(env.Content, d.AttrOr("stream", ""), period, env), nil
	})

	r.Register("text", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		return Text{Title: d.Field("title"), Body: d.Field("body")}, nil
	})

	r.Register("local-image", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		if src := d.Field("src"); src != "" {
			return LocalImage{Src: src, Caption: captionOf(d)}, nil
		}
		id, err := d.Int("id", -1)
		if err != nil {
			return nil, err
		}
		if id < 0 {
			return nil, missing("id")
		}
		return env.localImage(id, captionOf(d)), nil
	})

	r.Register("remote-image", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		src, err := required(d, "src")
		if err != nil {
			return nil, err
		}
		return RemoteImage{Src: src, Caption: captionOf(d)}, nil
	})

	r.Register("link", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		url, err := required(d, "url")
		if err != nil {
			return nil, err
		}
		return Link{URL: url, Caption: captionOf(d), Fallback: env.qrFallback()}, nil
	})

	r.Register("qr-code", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		url, err := required(d, "url")
		if err != nil {
			return nil, err
		}
		size, err := d.Int("size", DefaultQRCodeSize)
		if err != nil {
			return nil, err
		}
		return QRCode{URL: url, Size: size, Fallback: env.qrFallback()}, nil
	})

	r.Register("video", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		src, err := required(d, "src")
		if err != nil {
			return nil, err
		}
		controls, err := d.Bool("controls-page-time", false)
		if err != nil {
			return nil, err
		}
		return Video{Src: src, ControlsPageTime: controls}, nil
	})

	r.Register("youtube", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		id, err := required(d, "id")
		if err != nil {
			return nil, err
		}
		controls, err := d.Bool("controls-page-time", false)
		if err != nil {
			return nil, err
		}
		return YouTube{VideoID: id, ControlsPageTime: controls}, nil
	})

	r.Register("iframe", func(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
		url, err := required(d, "url")
		if err != nil {
			return nil, err
		}
		return Iframe{URL: url, Caption: captionOf(d)}, nil
	})

	r.SetWrap(injector)
	return r
}

func injector(w core.Widget, attrs map[string]string) (core.Widget, error) {
	inj, err := NewAttributeInjector(w, attrs)
	if err != nil {
		return nil, err
	}
	return inj, nil
}

// single decodes the only child of a wrapping kind.
func single(dec *descriptor.Decoder, d *descriptor.Descriptor) (core.Widget, error) {
	if n := len(d.Children); n > 1 {
		return nil, dec.Errorf("%s takes exactly one child, got %d", d.Kind, n)
	}
	return dec.Child(d.FirstChild())
}

func captionOf(d *descriptor.Descriptor) *Caption {
	c := d.Typed("caption")
	if c == nil {
		return nil
	}
	return &Caption{Title: c.Field("title"), Body: c.Field("body")}
}

func required(d *descriptor.Descriptor, name string) (string, error) {
	if v := d.Field(name); v != "" {
		return v, nil
	}
	return "", missing(name)
}

func missing(name string) error {
	return fmt.Errorf("missing required attribute %q", name)
}
