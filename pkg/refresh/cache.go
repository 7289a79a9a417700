package refresh

import (
	"reflect"
	"sync"

	"golang.org/x/net/html"

	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/errors"
)

// CacheClass is the intrinsic class of the container an IdentityCache
// builds.
const CacheClass = "cache"

// KeyFunc returns the identity key of a child. Keys must be comparable.
type KeyFunc func(child core.Widget) any

// Identified is implemented by widgets that carry a stable identity, usually
// the id of the record they display.
type Identified interface {
	ID() any
}

// ByID keys children by their ID method. Widgets without an ID are keyed by
// value when comparable; otherwise they get a fresh key and are rebuilt on
// every Build.
func ByID(child core.Widget) any {
	if id, ok := child.(Identified); ok {
		return id.ID()
	}
	if v := reflect.ValueOf(child); v.IsValid() && v.Comparable() {
		return child
	}
	return new(byte)
}

// IdentityCache renders a list of children into a container, reusing the
// node built for a child in the previous Build when its key is unchanged.
//
// The cache is stateful: its owner must keep the same instance across
// refresh cycles and update it with SetChildren before each rebuild. Entries
// for keys absent from the current children are dropped on every Build, so
// the cache never holds more entries than there are children.
type IdentityCache struct {
	key KeyFunc

	mu       sync.Mutex
	children []core.Widget
	nodes    map[any]*html.Node
}

// NewIdentityCache returns an empty cache keyed by key.
func NewIdentityCache(key KeyFunc) *IdentityCache {
	if key == nil {
		key = ByID
	}
	return &IdentityCache{key: key, nodes: make(map[any]*html.Node)}
}

// SetChildren replaces the children shown by the next Build. Two children
// with the same key are rejected with *errors.DuplicateKeyError and the
// previous children stay in effect.
func (c *IdentityCache) SetChildren(children []core.Widget) error {
	seen := make(map[any]int, len(children))
	for i, child := range children {
		k := c.key(child)
		if first, dup := seen[k]; dup {
			return &errors.DuplicateKeyError{Key: k, First: first, Second: i}
		}
		seen[k] = i
	}
	c.mu.Lock()
	c.children = append([]core.Widget(nil), children...)
	c.mu.Unlock()
	return nil
}

// Children returns the current children.
func (c *IdentityCache) Children() []core.Widget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Widget(nil), c.children...)
}

// Len returns the number of cached nodes.
func (c *IdentityCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

func (c *IdentityCache) ClassName() string { return CacheClass }

func (c *IdentityCache) Build(ctx core.BuildContext) core.Widget {
	c.mu.Lock()
	defer c.mu.Unlock()

	container := dom.Element("div")
	next := make(map[any]*html.Node, len(c.children))
	for _, child := range c.children {
		k := c.key(child)
		node, ok := c.nodes[k]
		if !ok {
			node = core.RenderIfWidget(ctx, child)
		}
		next[k] = node
		dom.Append(container, node)
	}
	c.nodes = next
	return core.Node(container)
}
