package widgets

import (
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"strconv"

	"github.com/skip2/go-qrcode"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/net/html"

	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/errors"
)

// DefaultQRCodeSize is the edge length of generated QR codes, in pixels.
const DefaultQRCodeSize = 256

// QRCodeFailureImage is shown in place of a QR code that cannot be encoded.
const QRCodeFailureImage = "/static/QRcode_failure.jpg"

// Text is a free-form heading and paragraph.
type Text struct {
	Title string
	Body  string
}

func (t Text) ClassName() string { return "free-form-content text" }

func (t Text) Build(core.BuildContext) core.Widget {
	container := dom.Element("div")
	dom.Append(container,
		dom.TextElement("h3", t.Title),
		dom.TextElement("p", t.Body),
	)
	return core.Node(container)
}

// LocalImage shows an image uploaded to the signage server. Width and
// Height, when known, are emitted so the layout does not shift while the
// image loads; see ImageSize.
type LocalImage struct {
	Src     string
	Width   int
	Height  int
	Caption *Caption
}

func (i LocalImage) ClassName() string { return "free-form-content local-image" }

func (i LocalImage) Build(core.BuildContext) core.Widget {
	img := dom.Element("img", "src", i.Src)
	if i.Width > 0 && i.Height > 0 {
		dom.SetAttr(img, "width", strconv.Itoa(i.Width))
		dom.SetAttr(img, "height", strconv.Itoa(i.Height))
	}
	return core.Node(captioned(i.Caption, img))
}

// ImageSize reads the intrinsic size of the image file at path without
// decoding the pixels. PNG, JPEG, GIF, BMP, TIFF and WebP are recognized.
func ImageSize(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("read image size of %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// RemoteImage shows an image hosted elsewhere.
type RemoteImage struct {
	Src     string
	Caption *Caption
}

func (i RemoteImage) ClassName() string { return "free-form-content remote-image" }

func (i RemoteImage) Build(core.BuildContext) core.Widget {
	return core.Node(captioned(i.Caption, dom.Element("img", "src", i.Src)))
}

// Iframe embeds a page.
type Iframe struct {
	URL     string
	Caption *Caption
}

func (f Iframe) ClassName() string { return "free-form-content iframe-content" }

func (f Iframe) Build(core.BuildContext) core.Widget {
	return core.Node(captioned(f.Caption, dom.Element("iframe", "src", f.URL)))
}

// Link embeds a page next to a QR code of its address, so that viewers can
// open it on their phones.
type Link struct {
	URL     string
	Caption *Caption
	// Fallback replaces the QR code if it cannot be generated.
	Fallback string
}

func (l Link) ClassName() string { return "free-form-content link" }

func (l Link) Build(ctx core.BuildContext) core.Widget {
	return core.Node(captioned(l.Caption,
		dom.Element("iframe", "src", l.URL),
		core.Render(ctx, QRCode{URL: l.URL, Fallback: l.Fallback}),
	))
}

// QRCode renders URL as a QR code image inlined as a data URI. When the
// code cannot be generated, the failure is reported and the Fallback image
// is shown instead.
type QRCode struct {
	URL      string
	Size     int
	Fallback string
}

func (q QRCode) ClassName() string { return "qrcode" }

func (q QRCode) Build(core.BuildContext) core.Widget {
	size := q.Size
	if size <= 0 {
		size = DefaultQRCodeSize
	}
	container := dom.Element("div")
	png, err := qrcode.Encode(q.URL, qrcode.Medium, size)
	if err != nil {
		errors.Report(&errors.SignageError{
			Op:     "widgets.QRCode",
			Kind:   errors.KindRender,
			Widget: "widgets.QRCode",
			Err:    fmt.Errorf("encode %q: %w", q.URL, err),
		})
		fallback := q.Fallback
		if fallback == "" {
			fallback = QRCodeFailureImage
		}
		dom.Append(container, dom.Element("img", "src", fallback, "width", "200", "height", "200"))
		return core.Node(container)
	}
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	dom.Append(container, dom.Element("img", "src", src, "alt", q.URL))
	return core.Node(container)
}

// QRCodeContent is a captioned QR code published through a content stream.
type QRCodeContent struct {
	URL      string
	Caption  *Caption
	Fallback string
}

func (q QRCodeContent) ClassName() string { return "free-form-content qrcode-content" }

func (q QRCodeContent) Build(ctx core.BuildContext) core.Widget {
	return core.Node(captioned(q.Caption, core.Render(ctx, QRCode{URL: q.URL, Fallback: q.Fallback})))
}

// Video plays a muted clip. Unless ControlsPageTime is set the clip loops;
// with it, the clip plays once and marks the enclosing page done when it
// ends.
type Video struct {
	Src              string
	ControlsPageTime bool
}

func (v Video) ClassName() string { return "video" }

func (v Video) Build(core.BuildContext) core.Widget {
	return core.Node(v.element())
}

func (v Video) element() *html.Node {
	video := dom.Element("video", "autoplay", "", "muted", "")
	if v.ControlsPageTime {
		dom.SetAttr(video, "data-controls-page-time", "true")
	} else {
		dom.SetAttr(video, "loop", "")
	}
	dom.Append(video, dom.Element("source", "src", v.Src))
	return video
}

// YouTubeEmbed is the address YouTube videos are embedded from.
const YouTubeEmbed = "https://www.youtube-nocookie.com/embed/"

// YouTube plays a YouTube video muted and without player controls. Like
// Video it loops unless ControlsPageTime is set.
type YouTube struct {
	VideoID          string
	ControlsPageTime bool
}

func (y YouTube) ClassName() string { return "video youtube" }

func (y YouTube) Build(core.BuildContext) core.Widget {
	q := url.Values{"autoplay": {"1"}, "mute": {"1"}, "controls": {"0"}, "enablejsapi": {"1"}}
	if !y.ControlsPageTime {
		// A single video only loops when it is also its own playlist.
		q.Set("loop", "1")
		q.Set("playlist", y.VideoID)
	}
	frame := dom.Element("iframe",
		"src", YouTubeEmbed+url.PathEscape(y.VideoID)+"?"+q.Encode(),
		"allow", "autoplay; encrypted-media",
	)
	if y.ControlsPageTime {
		dom.SetAttr(frame, "data-controls-page-time", "true")
	}
	return core.Node(frame)
}

// LocalVideo is a captioned video uploaded to the signage server.
type LocalVideo struct {
	Src     string
	Caption *Caption
}

func (v LocalVideo) ClassName() string { return "free-form-content video" }

func (v LocalVideo) Build(core.BuildContext) core.Widget {
	return core.Node(captioned(v.Caption, Video{Src: v.Src}.element()))
}
