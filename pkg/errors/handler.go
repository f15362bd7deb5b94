package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// installed wraps the active Handler so handlers of different concrete
// types can share one atomic slot.
type installed struct{ h Handler }

var active atomic.Pointer[installed]

func init() { active.Store(&installed{h: &LogHandler{}}) }

// SetHandler installs h as the destination for every reported element
// error and callback panic. A nil h reinstalls the LogHandler.
func SetHandler(h Handler) {
	if h == nil {
		h = &LogHandler{}
	}
	active.Store(&installed{h: h})
}

// CurrentHandler returns the handler reports are delivered to.
func CurrentHandler() Handler { return active.Load().h }

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

// Report delivers err to the current handler, stamping it first.
func Report(err *Error) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	CurrentHandler().HandleError(err)
}

// ReportPanic delivers a recovered callback panic to the current handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	CurrentHandler().HandlePanic(err)
}

// Recovered builds the PanicError for a value recovered while running a
// callback of element. The stack starts at the caller of Recovered.
func Recovered(op string, element uint64, r any) *PanicError {
	return &PanicError{
		Op:         op,
		Element:    element,
		Value:      r,
		StackTrace: captureStack(3),
		Timestamp:  time.Now(),
	}
}

// Recover reports a panic in the deferring function without re-raising it.
//
//	defer errors.Recover("app.Close")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(Recovered(op, 0, r))
	}
}

// RecoverWithCallback is Recover followed by fn(r), so the caller can turn
// the panic into a return value.
func RecoverWithCallback(op string, fn func(r any)) {
	r := recover()
	if r == nil {
		return
	}
	ReportPanic(Recovered(op, 0, r))
	if fn != nil {
		fn(r)
	}
}

// CaptureStack formats the stack of its caller, one "func\n\tfile:line"
// entry per frame.
func CaptureStack() string { return captureStack(3) }

func captureStack(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			return sb.String()
		}
	}
}
