package core

import (
	"fmt"
	"reflect"
	"time"

	"golang.org/x/net/html"

	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/errors"
)

// Widget is the unit of composition. Build returns either another Widget or
// a Terminal. Build must be pure with respect to display: it may create the
// nodes it returns but must not touch nodes that are already mounted.
type Widget interface {
	Build(ctx BuildContext) Widget
}

// Terminal is a finished visual node in widget form. Its Build returns
// itself, which ends the render loop.
type Terminal struct {
	Node *html.Node
}

func (t Terminal) Build(BuildContext) Widget { return t }

// Node wraps a visual node as a Widget.
func Node(n *html.Node) Terminal {
	return Terminal{Node: n}
}

// ClassNamer is implemented by widgets that carry an intrinsic class.
type ClassNamer interface {
	ClassName() string
}

// BuildErrorClass marks the placeholder rendered in place of a failed build.
const BuildErrorClass = "build-error"

// maxBuildDepth bounds the Build chain of a single widget so that a widget
// returning itself cannot hang the render loop.
const maxBuildDepth = 1024

// Render resolves w to a visual node by calling Build until the result is a
// Terminal. It never returns nil: a nil widget, a nil node, or a Build that
// panics yields a hidden placeholder, and the failure is reported through the
// errors package.
func Render(ctx BuildContext, w Widget) *html.Node {
	var classes []string
	for depth := 0; ; depth++ {
		if w == nil || isNilWidget(w) {
			return dom.Placeholder()
		}
		if t, ok := w.(Terminal); ok {
			if t.Node == nil {
				return dom.Placeholder()
			}
			applyClasses(t.Node, classes)
			return t.Node
		}
		if depth == maxBuildDepth {
			errors.ReportBuildError(&errors.BuildError{
				Widget: TypeName(w),
				Err:    fmt.Errorf("build chain exceeded %d steps", maxBuildDepth),
			})
			return dom.Placeholder(BuildErrorClass)
		}
		if namer, ok := w.(ClassNamer); ok {
			if class := namer.ClassName(); class != "" {
				classes = append(classes, class)
			}
		}
		next, ok := safeBuild(ctx, w)
		if !ok {
			return dom.Placeholder(BuildErrorClass)
		}
		w = next
	}
}

// RenderIfWidget renders w unless it already is a Terminal, whose node is
// returned untouched.
func RenderIfWidget(ctx BuildContext, w Widget) *html.Node {
	if t, ok := w.(Terminal); ok && t.Node != nil {
		return t.Node
	}
	return Render(ctx, w)
}

// applyClasses adds the collected classes innermost first.
func applyClasses(n *html.Node, classes []string) {
	for i := len(classes) - 1; i >= 0; i-- {
		dom.AddClass(n, classes[i])
	}
}

// safeBuild executes w.Build with panic recovery.
// If the build panics, it reports the error and returns false.
func safeBuild(ctx BuildContext, w Widget) (built Widget, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			errors.ReportBuildError(&errors.BuildError{
				Widget:     TypeName(w),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
			built, ok = nil, false
		}
	}()
	return w.Build(ctx), true
}

func isNilWidget(w Widget) bool {
	v := reflect.ValueOf(w)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// TypeName returns the short type name used in error reports, such as
// "widgets.Clock".
func TypeName(w any) string {
	if w == nil {
		return "<nil>"
	}
	return reflect.TypeOf(w).String()
}
