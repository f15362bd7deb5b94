// Package errors provides structured error handling for the guihck runtime.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindUnknownType indicates creation with an unregistered element type.
	KindUnknownType
	// KindDuplicateRegistration indicates a type name registered twice.
	KindDuplicateRegistration
	// KindInvalidElement indicates a stale, destroyed, or unknown element id.
	KindInvalidElement
	// KindPropertyNotFound indicates a property that holds no value.
	KindPropertyNotFound
	// KindBindingCycle indicates an alias, binding, or listener chain that revisits itself.
	KindBindingCycle
	// KindStackUnderflow indicates a pop beyond the construction stack base frame.
	KindStackUnderflow
	// KindReparentCycle indicates a reparent that would make an element its own ancestor.
	KindReparentCycle
	// KindScript indicates a failure reported by the scripting layer.
	KindScript
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates invalid configuration.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnknownType:
		return "unknown-type"
	case KindDuplicateRegistration:
		return "duplicate-registration"
	case KindInvalidElement:
		return "invalid-element"
	case KindPropertyNotFound:
		return "property-not-found"
	case KindBindingCycle:
		return "binding-cycle"
	case KindStackUnderflow:
		return "stack-underflow"
	case KindReparentCycle:
		return "reparent-cycle"
	case KindScript:
		return "script"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per structural kind. Every *Error matches the
// sentinel of its kind through errors.Is.
var (
	ErrUnknownType           = stderrors.New("unknown element type")
	ErrDuplicateRegistration = stderrors.New("element type already registered")
	ErrInvalidElement        = stderrors.New("invalid element id")
	ErrPropertyNotFound      = stderrors.New("property not found")
	ErrBindingCycle          = stderrors.New("binding cycle")
	ErrStackUnderflow        = stderrors.New("construction stack underflow")
	ErrReparentCycle         = stderrors.New("reparent would create a cycle")
	ErrScript                = stderrors.New("script error")
	ErrConfig                = stderrors.New("invalid configuration")
)

// Sentinel returns the sentinel error for a kind, or nil for kinds without one.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindUnknownType:
		return ErrUnknownType
	case KindDuplicateRegistration:
		return ErrDuplicateRegistration
	case KindInvalidElement:
		return ErrInvalidElement
	case KindPropertyNotFound:
		return ErrPropertyNotFound
	case KindBindingCycle:
		return ErrBindingCycle
	case KindStackUnderflow:
		return ErrStackUnderflow
	case KindReparentCycle:
		return ErrReparentCycle
	case KindScript:
		return ErrScript
	case KindConfig:
		return ErrConfig
	default:
		return nil
	}
}

// Error represents a structured error raised by the runtime.
type Error struct {
	// Op is the operation that failed (e.g., "core.SetProperty").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Element is the element id involved, 0 when not applicable.
	Element uint64
	// Property is the property name involved, if any.
	Property string
	// Err is the underlying cause, if any.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

// New builds an *Error for op and kind with an optional formatted detail.
func New(op string, kind ErrorKind, format string, args ...any) *Error {
	e := &Error{Op: op, Kind: kind}
	if format != "" {
		e.Err = fmt.Errorf(format, args...)
	}
	return e
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if s := e.Kind.Sentinel(); s != nil {
		msg = s.Error()
	}
	subject := ""
	switch {
	case e.Element != 0 && e.Property != "":
		subject = fmt.Sprintf(" element=%d property=%s", e.Element, e.Property)
	case e.Element != 0:
		subject = fmt.Sprintf(" element=%d", e.Element)
	case e.Property != "":
		subject = fmt.Sprintf(" property=%s", e.Property)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]%s: %s: %v", e.Op, e.Kind, subject, msg, e.Err)
	}
	return fmt.Sprintf("%s [%s]%s: %s", e.Op, e.Kind, subject, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.Sentinel()
	return s != nil && target == s
}

// WithElement sets the element id and returns e.
func (e *Error) WithElement(id uint64) *Error {
	e.Element = id
	return e
}

// WithProperty sets the property name and returns e.
func (e *Error) WithProperty(name string) *Error {
	e.Property = name
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	var p *PanicError
	if stderrors.As(err, &p) {
		return KindPanic
	}
	return KindUnknown
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "core.Update").
	Op string
	// Element is the element whose callback panicked, 0 when not applicable.
	Element uint64
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

// Handler receives errors reported by the runtime.
type Handler interface {
	// HandleError is called when an error is reported.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
