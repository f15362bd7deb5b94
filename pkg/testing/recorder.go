package testing

import (
	"fmt"

	"github.com/go-guihck/guihck/pkg/core"
)

// Lifecycle event kinds logged by a Recorder.
const (
	EventInit    = "init"
	EventDestroy = "destroy"
	EventUpdate  = "update"
	EventRender  = "render"
)

// Event is one lifecycle callback observed by a Recorder.
type Event struct {
	Kind    string
	Element core.ElementID
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%d)", e.Kind, e.Element)
}

// Recorder is an element behavior that logs every lifecycle callback it
// receives. Register it under a type name, build a tree, and inspect
// Events.
type Recorder struct {
	Events []Event
	// Changed decides the result of Update. Nil reports no change.
	Changed func(c *core.Context, id core.ElementID) bool
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Register registers r on ctx under name.
func (r *Recorder) Register(ctx *core.Context, name string) (core.TypeID, error) {
	return ctx.Register(name, r, 0)
}

func (r *Recorder) Init(c *core.Context, id core.ElementID, data any) {
	r.Events = append(r.Events, Event{EventInit, id})
}

func (r *Recorder) Destroy(c *core.Context, id core.ElementID, data any) {
	r.Events = append(r.Events, Event{EventDestroy, id})
}

func (r *Recorder) Update(c *core.Context, id core.ElementID, data any) bool {
	r.Events = append(r.Events, Event{EventUpdate, id})
	if r.Changed != nil {
		return r.Changed(c, id)
	}
	return false
}

func (r *Recorder) Render(c *core.Context, id core.ElementID, data any) {
	r.Events = append(r.Events, Event{EventRender, id})
}

// Count returns how many events of kind were logged.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// For returns the event kinds logged for one element, in order.
func (r *Recorder) For(id core.ElementID) []string {
	var kinds []string
	for _, e := range r.Events {
		if e.Element == id {
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds
}

// Strings renders the log as "kind(id)" entries.
func (r *Recorder) Strings() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.String()
	}
	return out
}

// Reset clears the log.
func (r *Recorder) Reset() {
	r.Events = nil
}
