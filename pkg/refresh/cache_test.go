package refresh_test

import (
	stderrors "errors"
	"testing"

	"golang.org/x/net/html"

	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/errors"
	"github.com/go-drift/signage/pkg/refresh"
)

// item is an identified child that counts its builds.
type item struct {
	id     int
	label  string
	builds map[int]int
}

func (i item) ID() any { return i.id }

func (i item) Build(core.BuildContext) core.Widget {
	i.builds[i.id]++
	return core.Node(dom.TextElement("p", i.label))
}

func items(builds map[int]int, ids ...int) []core.Widget {
	out := make([]core.Widget, len(ids))
	for n, id := range ids {
		out[n] = item{id: id, label: "item", builds: builds}
	}
	return out
}

func renderCache(t *testing.T, c *refresh.IdentityCache, children []core.Widget) []*html.Node {
	t.Helper()
	if err := c.SetChildren(children); err != nil {
		t.Fatalf("SetChildren: %v", err)
	}
	container := core.Render(core.Detached(nil), c)
	if !dom.HasClass(container, refresh.CacheClass) {
		t.Errorf("container classes = %v, want %q", dom.Classes(container), refresh.CacheClass)
	}
	return dom.Children(container)
}

func totalBuilds(builds map[int]int) int {
	n := 0
	for _, v := range builds {
		n += v
	}
	return n
}

func TestIdentityCache_StableChildrenAreReused(t *testing.T) {
	builds := map[int]int{}
	cache := refresh.NewIdentityCache(refresh.ByID)

	first := renderCache(t, cache, items(builds, 1, 2, 3))
	second := renderCache(t, cache, items(builds, 1, 2, 3))

	if len(second) != 3 {
		t.Fatalf("got %d children, want 3", len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("child %d was rebuilt", i)
		}
	}
	if got := totalBuilds(builds); got != 3 {
		t.Errorf("total builds = %d, want 3", got)
	}
}

func TestIdentityCache_OnlyChangedChildRebuilds(t *testing.T) {
	tests := []struct {
		name    string
		next    []int
		rebuilt int
	}{
		{"replace", []int{1, 9, 3}, 9},
		{"insert", []int{1, 2, 7, 3}, 7},
		{"prepend", []int{0, 1, 2, 3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builds := map[int]int{}
			cache := refresh.NewIdentityCache(refresh.ByID)
			before := renderCache(t, cache, items(builds, 1, 2, 3))
			byID := map[int]*html.Node{1: before[0], 2: before[1], 3: before[2]}

			after := renderCache(t, cache, items(builds, tt.next...))

			for i, id := range tt.next {
				if id == tt.rebuilt {
					if builds[id] != 1 {
						t.Errorf("child %d built %d times, want 1", id, builds[id])
					}
					continue
				}
				if after[i] != byID[id] {
					t.Errorf("child %d was not reused", id)
				}
				if builds[id] != 1 {
					t.Errorf("child %d built %d times, want 1", id, builds[id])
				}
			}
		})
	}
}

func TestIdentityCache_DropsAbsentKeys(t *testing.T) {
	builds := map[int]int{}
	cache := refresh.NewIdentityCache(refresh.ByID)

	renderCache(t, cache, items(builds, 1, 2, 3))
	renderCache(t, cache, items(builds, 1, 3))
	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}
	renderCache(t, cache, items(builds, 1, 3))
	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}

	renderCache(t, cache, items(builds, 1, 2, 3))
	if builds[2] != 2 {
		t.Errorf("dropped child 2 built %d times, want 2", builds[2])
	}
	if builds[1] != 1 || builds[3] != 1 {
		t.Errorf("kept children rebuilt: %v", builds)
	}
}

func TestIdentityCache_EmptyChildren(t *testing.T) {
	builds := map[int]int{}
	cache := refresh.NewIdentityCache(nil)
	renderCache(t, cache, items(builds, 1, 2))

	if got := renderCache(t, cache, nil); len(got) != 0 {
		t.Errorf("got %d children, want 0", len(got))
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cache.Len())
	}
}

func TestIdentityCache_DuplicateKeysRejected(t *testing.T) {
	builds := map[int]int{}
	cache := refresh.NewIdentityCache(refresh.ByID)
	if err := cache.SetChildren(items(builds, 1, 2)); err != nil {
		t.Fatalf("SetChildren: %v", err)
	}

	err := cache.SetChildren(items(builds, 4, 5, 4))
	var dup *errors.DuplicateKeyError
	if !stderrors.As(err, &dup) {
		t.Fatalf("SetChildren error = %v, want *errors.DuplicateKeyError", err)
	}
	if dup.Key != 4 || dup.First != 0 || dup.Second != 2 {
		t.Errorf("DuplicateKeyError = %+v", dup)
	}
	if got := len(cache.Children()); got != 2 {
		t.Errorf("previous children replaced: have %d, want 2", got)
	}
}

func TestIdentityCache_TerminalChildrenPassThrough(t *testing.T) {
	p := dom.TextElement("p", "static")
	cache := refresh.NewIdentityCache(refresh.ByID)

	first := renderCache(t, cache, []core.Widget{core.Node(p)})
	second := renderCache(t, cache, []core.Widget{core.Node(p)})

	if first[0] != p || second[0] != p {
		t.Error("terminal child should be passed through unchanged")
	}
}

func TestByIDFallsBackForUncomparableWidgets(t *testing.T) {
	type listWidget struct {
		core.Terminal
		items []string
	}
	a := refresh.ByID(listWidget{items: []string{"x"}})
	b := refresh.ByID(listWidget{items: []string{"x"}})
	if a == b {
		t.Error("uncomparable widgets should get distinct keys")
	}
}
