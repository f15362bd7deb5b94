package errors

import (
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("guihck.errors")

// LogHandler is a Handler that writes reports to the commonlog backend.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

// HandleError logs an Error.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	log.Errorf("%s", err.Error())
	if h.Verbose && err.StackTrace != "" {
		log.Errorf("stack trace:\n%s", err.StackTrace)
	}
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Element != 0 {
		log.Criticalf("%s (element %d)", err.Error(), err.Element)
	} else {
		log.Criticalf("%s", err.Error())
	}
	if h.Verbose && err.StackTrace != "" {
		log.Criticalf("stack trace:\n%s", err.StackTrace)
	}
}
