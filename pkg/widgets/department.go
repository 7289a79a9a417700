package widgets

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-drift/signage/pkg/api"
	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/refresh"
)

// DefaultDepartmentPeriod is how often a Department polls its roster.
const DefaultDepartmentPeriod = time.Second

// LecturerSource provides the department roster.
type LecturerSource interface {
	Lecturers(ctx context.Context) (*api.Roster, error)
}

// Department lists the lecturers of a department, polling Source as soon as
// it is mounted and then every Period. Lecturers whose record did not change
// between polls keep their node.
type Department struct {
	Source LecturerSource
	Period time.Duration

	roster *rosterPoller
}

// NewDepartment returns a Department that keeps its last roster when it is
// built again, as it is each time an enclosing rotation comes back to it.
func NewDepartment(source LecturerSource, period time.Duration) Department {
	d := Department{Source: source, Period: period}
	d.roster = d.newPoller()
	return d
}

func (d Department) newPoller() *rosterPoller {
	// Lecturer values are comparable, so ByID keys each entry by its whole
	// record: an edited lecturer is rebuilt, the others are reused.
	return &rosterPoller{source: d.Source, cache: refresh.NewIdentityCache(refresh.ByID)}
}

func (d Department) ClassName() string { return "department" }

func (d Department) Build(core.BuildContext) core.Widget {
	period := d.Period
	if period <= 0 {
		period = DefaultDepartmentPeriod
	}
	p := d.roster
	if p == nil {
		p = d.newPoller()
	}
	return refresh.Refresh{
		Name:    "widgets.Department",
		Period:  period,
		Eager:   true,
		Step:    p.step,
		Builder: func() core.Widget { return p.cache },
	}
}

type rosterPoller struct {
	mu     sync.Mutex
	source LecturerSource
	cache  *refresh.IdentityCache
	digest string
}

func (p *rosterPoller) step(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	roster, err := p.source.Lecturers(ctx)
	if err != nil {
		return false, err
	}
	if roster.Digest != "" && roster.Digest == p.digest {
		return false, nil
	}
	children := make([]core.Widget, len(roster.Lecturers))
	for i, l := range roster.Lecturers {
		children[i] = Lecturer{Lecturer: l}
	}
	if err := p.cache.SetChildren(children); err != nil {
		return false, err
	}
	p.digest = roster.Digest
	return true, nil
}

// Lecturer shows one roster entry: a heading with the lecturer's title and
// name, then their contact details one per line.
type Lecturer struct {
	api.Lecturer
}

func (l Lecturer) ClassName() string { return "lecturer" }

func (l Lecturer) Build(core.BuildContext) core.Widget {
	heading := strings.TrimSpace(l.Title + " " + l.Name)
	details := dom.Element("p")
	lines := []string{
		"Position: " + l.Position,
		"Office Hours: " + l.OfficeHours,
		"Office Location: " + l.OfficeLocation,
		"Email: " + l.Email,
		"Phone: " + l.Phone,
	}
	for i, line := range lines {
		if i > 0 {
			dom.Append(details, dom.Element("br"))
		}
		dom.Append(details, dom.Text(line))
	}
	return GroupOf(core.Node(dom.TextElement("h3", heading)), core.Node(details))
}
