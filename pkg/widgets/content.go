package widgets

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-drift/signage/pkg/api"
	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/errors"
	"github.com/go-drift/signage/pkg/refresh"
)

// DefaultContentPeriod is how often a ContentStream polls its feed.
const DefaultContentPeriod = 30 * time.Second

// ContentSource provides the items of a content stream.
type ContentSource interface {
	Content(ctx context.Context, stream string) (*api.Feed, error)
}

// ContentItem is the wire form of a piece of free-form content. Which fields
// are set depends on Type.
type ContentItem struct {
	ID      int      `json:"id"`
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	URL     string   `json:"url"`
	Src     string   `json:"src"`
	Caption *Caption `json:"caption"`
}

// ContentFactory builds the widget for one content item.
type ContentFactory func(env Env, item ContentItem) (core.Widget, error)

// contentTypes maps the type field of content items to their widgets.
var contentTypes = map[string]ContentFactory{
	"text": func(_ Env, item ContentItem) (core.Widget, error) {
		return Text{Title: item.Title, Body: item.Body}, nil
	},
	"local_image": func(env Env, item ContentItem) (core.Widget, error) {
		return env.localImage(item.ID, item.Caption), nil
	},
	"remote_image": func(_ Env, item ContentItem) (core.Widget, error) {
		return RemoteImage{Src: item.Src, Caption: item.Caption}, nil
	},
	"link": func(env Env, item ContentItem) (core.Widget, error) {
		return Link{URL: item.URL, Caption: item.Caption, Fallback: env.qrFallback()}, nil
	},
	"iframe_content": func(_ Env, item ContentItem) (core.Widget, error) {
		return Iframe{URL: item.URL, Caption: item.Caption}, nil
	},
	"qrcode_content": func(env Env, item ContentItem) (core.Widget, error) {
		return QRCodeContent{URL: item.URL, Caption: item.Caption, Fallback: env.qrFallback()}, nil
	},
	"local_video": func(env Env, item ContentItem) (core.Widget, error) {
		return LocalVideo{Src: env.blobURL(item.ID), Caption: item.Caption}, nil
	},
}

// ContentTypes returns the content item types DecodeContent understands.
func ContentTypes() []string {
	types := make([]string, 0, len(contentTypes))
	for t := range contentTypes {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// DecodeContent builds the widget for one encoded content item. An item of
// an unknown type fails with *errors.UnknownKindError.
func DecodeContent(env Env, raw json.RawMessage) (core.Widget, error) {
	var item ContentItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, &errors.ParseError{Format: "json", Err: err}
	}
	factory, ok := contentTypes[item.Type]
	if !ok {
		return nil, &errors.UnknownKindError{Kind: item.Type, Path: []string{"content-stream", item.Type}}
	}
	return factory(env, item)
}

// ContentStream shows the items of a content stream, polling Source as soon
// as it is mounted and then every Period. Items of unknown types are
// reported and skipped.
type ContentStream struct {
	Source ContentSource
	// Stream selects the stream; empty selects the default one.
	Stream string
	Period time.Duration
	Env    Env

	feed *feedPoller
}

// NewContentStream returns a ContentStream that keeps its last items when it
// is built again.
func NewContentStream(source ContentSource, stream string, period time.Duration, env Env) ContentStream {
	c := ContentStream{Source: source, Stream: stream, Period: period, Env: env}
	c.feed = c.newPoller()
	return c
}

func (c ContentStream) newPoller() *feedPoller {
	return &feedPoller{source: c.Source, stream: c.Stream, env: c.Env, cache: refresh.NewIdentityCache(refresh.ByID)}
}

func (c ContentStream) ClassName() string { return "content-stream" }

func (c ContentStream) Build(core.BuildContext) core.Widget {
	period := c.Period
	if period <= 0 {
		period = DefaultContentPeriod
	}
	p := c.feed
	if p == nil {
		p = c.newPoller()
	}
	return refresh.Refresh{
		Name:    "widgets.ContentStream",
		Period:  period,
		Eager:   true,
		Step:    p.step,
		Builder: func() core.Widget { return p.cache },
	}
}

type feedPoller struct {
	mu     sync.Mutex
	source ContentSource
	stream string
	env    Env
	cache  *refresh.IdentityCache
	digest string
}

func (p *feedPoller) step(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	feed, err := p.source.Content(ctx, p.stream)
	if err != nil {
		return false, err
	}
	if feed.Digest != "" && feed.Digest == p.digest {
		return false, nil
	}
	children := make([]core.Widget, 0, len(feed.Content))
	for _, raw := range feed.Content {
		w, err := DecodeContent(p.env, raw)
		if err != nil {
			errors.Report(&errors.SignageError{
				Op:     "widgets.ContentStream",
				Kind:   errors.KindRegistry,
				Widget: "widgets.ContentStream",
				Err:    err,
			})
			continue
		}
		children = append(children, contentEntry{key: contentKey(raw), child: w})
	}
	if err := p.cache.SetChildren(children); err != nil {
		return false, err
	}
	p.digest = feed.Digest
	return true, nil
}

// contentEntry keys a decoded item by its encoded form, so an item edited
// in place under the same id gets a fresh node.
type contentEntry struct {
	key   string
	child core.Widget
}

func (e contentEntry) ID() any { return e.key }

func (e contentEntry) Build(core.BuildContext) core.Widget { return e.child }

func contentKey(raw json.RawMessage) string {
	var item struct {
		ID int `json:"id"`
	}
	json.Unmarshal(raw, &item)
	return fmt.Sprintf("%d:%s", item.ID, api.Digest(raw))
}
