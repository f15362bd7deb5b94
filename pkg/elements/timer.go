package elements

import (
	"time"

	"github.com/go-guihck/guihck/pkg/core"
	"github.com/go-guihck/guihck/pkg/errors"
)

// Timer properties.
const (
	// PropInterval is the period in seconds.
	PropInterval = "interval"
	// PropRepeat counts the firings left after the next one; -1 repeats
	// forever and 0 stops the timer after it fires.
	PropRepeat = "repeat"
	// PropRunning starts and stops the timer.
	PropRunning = "running"
	// PropFired counts firings since the element was created.
	PropFired = "fired"
	// MethodOnTimeout is called with the firing count each time the
	// interval elapses.
	MethodOnTimeout = "on-timeout"
)

const defaultInterval = 1.0

type timerState struct {
	armed bool
	start time.Time
	fired int64
}

type timer struct{}

// RegisterTimer registers the timer type. A running timer keeps
// requesting frames; each update pass that finds its interval elapsed
// calls the element's on-timeout method.
func RegisterTimer(ctx *core.Context) (core.TypeID, error) {
	return ctx.Register(TypeTimer, timer{}, 0)
}

func (timer) NewData() any { return &timerState{} }

func (timer) Init(c *core.Context, id core.ElementID, data any) {
	setDefault(c, id, PropInterval, defaultInterval)
	setDefault(c, id, PropRepeat, int64(-1))
	setDefault(c, id, PropRunning, false)
	setDefault(c, id, PropFired, int64(0))
	if err := c.AddUpdateProperty(id, PropRunning); err != nil {
		log.Errorf("timer %d: %s", id, err)
	}
}

func (timer) Destroy(c *core.Context, id core.ElementID, data any) {
	*data.(*timerState) = timerState{}
}

func (timer) Update(c *core.Context, id core.ElementID, data any) bool {
	st := data.(*timerState)
	if !truthy(c, id, PropRunning) {
		st.armed = false
		return false
	}
	now := Now()
	c.RequestFrame()
	if !st.armed {
		st.armed = true
		st.start = now
		return false
	}

	interval := time.Duration(number(c, id, PropInterval, defaultInterval) * float64(time.Second))
	next, due := advance(st.start, now, interval)
	if !due {
		return false
	}
	st.start = next
	st.fired++
	setIfChanged(c, id, PropFired, st.fired)

	switch repeat := int64(number(c, id, PropRepeat, -1)); {
	case repeat == 0:
		st.armed = false
		setIfChanged(c, id, PropRunning, false)
	case repeat > 0:
		setIfChanged(c, id, PropRepeat, repeat-1)
	}

	if m, err := c.Property(id, MethodOnTimeout); err == nil {
		if _, ok := m.(core.Method); ok {
			if _, err := c.CallMethod(id, MethodOnTimeout, st.fired); err != nil {
				errors.Report(&errors.Error{
					Op:       "elements.timer",
					Kind:     errors.KindOf(err),
					Element:  uint64(id),
					Property: MethodOnTimeout,
					Err:      err,
				})
			}
		}
	}
	return true
}

func (timer) Render(*core.Context, core.ElementID, any) {}
