package widgets

import (
	"context"
	"time"

	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/refresh"
)

// DefaultPageDuration is how long a Rotation shows each child when Period
// is not set.
const DefaultPageDuration = 10 * time.Second

// StaticRefresh rebuilds Child from scratch every Period, which re-runs any
// state its Build derives from the clock or the environment.
type StaticRefresh struct {
	Period time.Duration
	Child  core.Widget
}

func (s StaticRefresh) ClassName() string { return "refresh" }

func (s StaticRefresh) Build(core.BuildContext) core.Widget {
	period := s.Period
	if period <= 0 {
		period = refresh.DefaultPeriod
	}
	return refresh.Refresh{
		Name:    "widgets.StaticRefresh",
		Period:  period,
		Builder: func() core.Widget { return s.Child },
	}
}

// Rotation shows one child at a time, advancing to the next every Period and
// wrapping around after the last. A single child is never rebuilt.
type Rotation struct {
	Children []core.Widget
	Period   time.Duration
}

func (r Rotation) ClassName() string { return "rotation" }

func (r Rotation) Build(core.BuildContext) core.Widget {
	if len(r.Children) == 0 {
		return core.Node(dom.Placeholder())
	}
	period := r.Period
	if period <= 0 {
		period = DefaultPageDuration
	}
	// index is only touched by the scheduler goroutine once mounted.
	var index int
	n := len(r.Children)
	return refresh.Refresh{
		Name:   "widgets.Rotation",
		Period: period,
		Step: func(context.Context) (bool, error) {
			index = (index + 1) % n
			return n != 1, nil
		},
		Builder: func() core.Widget {
			return GroupOf(r.Children[index])
		},
	}
}

// Paginated shows PageSize children at a time, starting at Page. Page wraps
// around the number of pages, so any value selects a page. With a Period
// the next page is shown every Period; without one the page is fixed.
type Paginated struct {
	Children []core.Widget
	PageSize int
	Page     int
	Period   time.Duration
}

func (p Paginated) ClassName() string { return "paginated" }

// Pages returns the number of pages, which is at least one.
func (p Paginated) Pages() int {
	size := max(p.PageSize, 1)
	return max(1, (len(p.Children)+size-1)/size)
}

// PageOf returns the children shown on page, after wrapping it.
func (p Paginated) PageOf(page int) []core.Widget {
	size := max(p.PageSize, 1)
	n := p.Pages()
	page = (page%n + n) % n
	start := min(page*size, len(p.Children))
	end := min(start+size, len(p.Children))
	return p.Children[start:end]
}

func (p Paginated) Build(core.BuildContext) core.Widget {
	n := p.Pages()
	if p.Period <= 0 || n == 1 {
		return Group{Children: p.PageOf(p.Page)}
	}
	page := (p.Page%n + n) % n
	return refresh.Refresh{
		Name:   "widgets.Paginated",
		Period: p.Period,
		Step: func(context.Context) (bool, error) {
			page = (page + 1) % n
			return true, nil
		},
		Builder: func() core.Widget {
			return Group{Children: p.PageOf(page)}
		},
	}
}
