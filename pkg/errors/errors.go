// Package errors provides structured error handling for the signage engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// Sentinels matched by the structured errors through errors.Is.
var (
	// ErrUnknownKind is matched by *UnknownKindError.
	ErrUnknownKind = stderrors.New("unknown widget kind")
	// ErrIllegalNesting is matched by *NestingError.
	ErrIllegalNesting = stderrors.New("illegal widget nesting")
	// ErrAnchorExists is matched by *LifecycleError.
	ErrAnchorExists = stderrors.New("root anchor already exists")
	// ErrDuplicateKey is matched by *DuplicateKeyError.
	ErrDuplicateKey = stderrors.New("duplicate identity key")
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindFetch indicates a failure talking to a leaf data endpoint.
	KindFetch
	// KindParsing indicates a descriptor or payload parsing failure.
	KindParsing
	// KindInit indicates an initialization error.
	KindInit
	// KindRender indicates a rendering error.
	KindRender
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindBuild indicates a build-time widget error.
	KindBuild
	// KindRegistry indicates a deserialization registry error.
	KindRegistry
	// KindNesting indicates an illegal widget composition.
	KindNesting
	// KindLifecycle indicates misuse of the root anchor lifecycle.
	KindLifecycle
	// KindRefresh indicates a failed refresh step.
	KindRefresh
)

func (k ErrorKind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindParsing:
		return "parsing"
	case KindInit:
		return "init"
	case KindRender:
		return "render"
	case KindPanic:
		return "panic"
	case KindBuild:
		return "build"
	case KindRegistry:
		return "registry"
	case KindNesting:
		return "nesting"
	case KindLifecycle:
		return "lifecycle"
	case KindRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// SignageError represents a structured error reported by the engine.
type SignageError struct {
	// Op is the operation that failed (e.g., "widgets.ContentStream").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Widget is the widget type involved, if applicable.
	Widget string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *SignageError) Error() string {
	if e.Widget != "" {
		return fmt.Sprintf("%s [%s] widget=%s: %v", e.Op, e.Kind, e.Widget, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *SignageError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "refresh.tick").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a failure to parse a descriptor document or payload.
type ParseError struct {
	// Format is the input format ("xml", "json", "yaml").
	Format string
	// Source names the input, usually a file path.
	Source string
	// Err is the underlying decoder error.
	Err error
}

func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("failed to parse %s descriptor %s: %v", e.Format, e.Source, e.Err)
	}
	return fmt.Sprintf("failed to parse %s descriptor: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// BuildError represents a failure during widget build.
type BuildError struct {
	// Widget is the type name of the widget that failed.
	Widget string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.Build(): %v", e.Widget, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s.Build(): %v", e.Widget, e.Err)
	}
	return fmt.Sprintf("unknown error in %s.Build()", e.Widget)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// UnknownKindError is returned when a descriptor names a kind that is not
// registered.
type UnknownKindError struct {
	// Kind is the offending kind name.
	Kind string
	// Path lists the ancestor kinds from the document root down to Kind.
	Path []string
}

func (e *UnknownKindError) Error() string {
	if len(e.Path) > 1 {
		return fmt.Sprintf("unknown widget kind %q at %s", e.Kind, strings.Join(e.Path, " > "))
	}
	return fmt.Sprintf("unknown widget kind %q", e.Kind)
}

func (e *UnknownKindError) Is(target error) bool {
	return target == ErrUnknownKind
}

// NestingError is returned when a widget is composed in a way that would lose
// state, such as a refresh scheduler directly under an attribute injector.
type NestingError struct {
	Parent string
	Child  string
}

func (e *NestingError) Error() string {
	return fmt.Sprintf("%s may not be the direct child of %s", e.Child, e.Parent)
}

func (e *NestingError) Is(target error) bool {
	return target == ErrIllegalNesting
}

// LifecycleError signals a root anchor lifecycle misuse.
type LifecycleError struct {
	Op string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s: there may only be one root anchor, and it already exists", e.Op)
}

func (e *LifecycleError) Is(target error) bool {
	return target == ErrAnchorExists
}

// DuplicateKeyError is returned when two children of an identity cache share
// the same key.
type DuplicateKeyError struct {
	Key any
	// First and Second are the child indexes that collided.
	First, Second int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("children %d and %d share identity key %v", e.First, e.Second, e.Key)
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// RefreshError represents a failed refresh step. It is reported, never
// returned: the scheduler keeps the previous node and keeps ticking.
type RefreshError struct {
	// Widget is the type name of the widget whose step failed.
	Widget string
	// Err is the error returned by the step (nil for panics).
	Err error
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// StackTrace is set for panics.
	StackTrace string
	// Timestamp is when the step failed.
	Timestamp time.Time
}

func (e *RefreshError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s refresh step: %v", e.Widget, e.Recovered)
	}
	return fmt.Sprintf("refresh step of %s failed: %v", e.Widget, e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *SignageError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleBuildError is called when a widget build fails.
	HandleBuildError(err *BuildError)
	// HandleRefreshError is called when a refresh step fails.
	HandleRefreshError(err *RefreshError)
}
