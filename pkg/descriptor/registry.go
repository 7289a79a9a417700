package descriptor

import (
	stderrors "errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/mod/semver"

	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/errors"
)

// SchemaVersion is the newest layout schema this package understands.
// Layouts declare theirs with a version attribute on the root element;
// layouts from a newer major version are rejected.
const SchemaVersion = "v1.2.0"

var (
	// ErrMissingChild is returned when a factory requires a child that the
	// descriptor does not have.
	ErrMissingChild = stderrors.New("missing child widget")
	// ErrSchemaVersion is returned for layouts with an unsupported version.
	ErrSchemaVersion = stderrors.New("unsupported layout schema version")
)

// Factory builds the widget for one descriptor. Children are deserialized
// through dec so that errors carry their position in the layout.
type Factory func(dec *Decoder, d *Descriptor) (core.Widget, error)

// WrapFunc applies pass-through attributes to a deserialized widget.
type WrapFunc func(w core.Widget, attrs map[string]string) (core.Widget, error)

// Registry maps widget kinds to factories. Every kind is registered exactly
// once; deserializing an unregistered kind is an error.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	wrap      WrapFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. It panics if kind is empty or already registered.
func (r *Registry) Register(kind string, f Factory) {
	if kind == "" || f == nil {
		panic("descriptor: Register with empty kind or nil factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[kind]; dup {
		panic(fmt.Sprintf("descriptor: kind %q registered twice", kind))
	}
	r.factories[kind] = f
}

// SetWrap installs the function that applies html: attributes. Without one,
// descriptors carrying such attributes fail to deserialize.
func (r *Registry) SetWrap(fn WrapFunc) {
	r.mu.Lock()
	r.wrap = fn
	r.mu.Unlock()
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

func (r *Registry) lookup(kind string) (Factory, WrapFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[kind]
	return f, r.wrap, ok
}

// Deserialize builds the widget tree for a layout root. The root's version
// attribute, when present, is checked against SchemaVersion.
func (r *Registry) Deserialize(d *Descriptor) (core.Widget, error) {
	if err := CheckVersion(d); err != nil {
		return nil, err
	}
	dec := &Decoder{registry: r}
	return dec.decode(d, nil, -1)
}

// CheckVersion validates the version attribute of a layout root.
func CheckVersion(d *Descriptor) error {
	v, ok := d.Attr("version")
	if !ok || v == "" {
		return nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrSchemaVersion, v)
	}
	if semver.Compare(semver.Major(v), semver.Major(SchemaVersion)) > 0 {
		return fmt.Errorf("%w: %s is newer than %s", ErrSchemaVersion, v, SchemaVersion)
	}
	return nil
}

// Error locates a factory failure in the layout.
type Error struct {
	Path []string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", strings.Join(e.Path, " > "), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Decoder deserializes the descriptors of one layout. It tracks the path from
// the root to the descriptor being built.
type Decoder struct {
	registry *Registry
	path     []string
	current  *Descriptor
}

// Path returns the position of the descriptor being built, root first.
func (dec *Decoder) Path() []string {
	return slices.Clone(dec.path)
}

// Child deserializes a child of the descriptor being built. A nil child is
// reported as ErrMissingChild.
func (dec *Decoder) Child(d *Descriptor) (core.Widget, error) {
	if d == nil {
		return nil, &Error{Path: dec.Path(), Err: ErrMissingChild}
	}
	index := -1
	if dec.current != nil && len(dec.current.Children) > 1 {
		index = slices.Index(dec.current.Children, d)
	}
	return dec.decode(d, dec.path, index)
}

// Children deserializes every child of d, in order.
func (dec *Decoder) Children(d *Descriptor) ([]core.Widget, error) {
	out := make([]core.Widget, 0, len(d.Children))
	for _, c := range d.Children {
		w, err := dec.Child(c)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// Errorf returns an error located at the descriptor being built.
func (dec *Decoder) Errorf(format string, args ...any) error {
	return &Error{Path: dec.Path(), Err: fmt.Errorf(format, args...)}
}

func (dec *Decoder) decode(d *Descriptor, parent []string, index int) (core.Widget, error) {
	step := d.Kind
	if index >= 0 {
		step = fmt.Sprintf("%s[%d]", d.Kind, index)
	}
	path := append(slices.Clone(parent), step)

	factory, wrap, ok := dec.registry.lookup(d.Kind)
	if !ok {
		return nil, &errors.UnknownKindError{Kind: d.Kind, Path: path}
	}

	child := &Decoder{registry: dec.registry, path: path, current: d}
	w, err := factory(child, d)
	if err != nil {
		return nil, locate(path, err)
	}

	attrs := d.HTMLAttributes()
	if len(attrs) == 0 {
		return w, nil
	}
	if wrap == nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("no wrapper registered for %s attributes", HTMLPrefix)}
	}
	w, err = wrap(w, attrs)
	if err != nil {
		return nil, locate(path, err)
	}
	return w, nil
}

// locate attaches path to err unless it already carries a location.
func locate(path []string, err error) error {
	var located *Error
	var unknown *errors.UnknownKindError
	if stderrors.As(err, &located) || stderrors.As(err, &unknown) {
		return err
	}
	return &Error{Path: path, Err: err}
}
