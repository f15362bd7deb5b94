package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-guihck/guihck/pkg/core"
	"github.com/go-guihck/guihck/pkg/elements"
	"github.com/go-guihck/guihck/pkg/guihck"
)

// FrameDuration is how far PumpAndSettle advances the fake clock between
// frames.
const FrameDuration = 16 * time.Millisecond

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: tree did not settle")

// Tester drives an App with a fake clock installed as the timer clock, so
// frames and timers run deterministically.
type Tester struct {
	app       *guihck.App
	clock     *FakeClock
	prevClock elements.Clock
}

// NewTester creates a tester around a new App. Call Cleanup when done, or
// use NewTesterWithT instead.
func NewTester(opts guihck.Options) (*Tester, error) {
	app, err := guihck.New(opts)
	if err != nil {
		return nil, err
	}
	clk := NewFakeClock()
	return &Tester{
		app:       app,
		clock:     clk,
		prevClock: elements.SetClock(clk),
	}, nil
}

// NewTesterWithT creates a tester with default options that is cleaned up
// via t.Cleanup(). This is the recommended constructor for tests.
func NewTesterWithT(t *testing.T) *Tester {
	t.Helper()
	tester, err := NewTester(guihck.Options{})
	if err != nil {
		t.Fatalf("NewTester: %v", err)
	}
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup closes the App and restores the timer clock.
func (t *Tester) Cleanup() {
	if t.app != nil {
		_ = t.app.Close()
		t.app = nil
	}
	elements.SetClock(t.prevClock)
}

// App returns the App under test.
func (t *Tester) App() *guihck.App {
	return t.app
}

// Context returns the App's context.
func (t *Tester) Context() *core.Context {
	return t.app.Context
}

// Clock returns the fake clock for advancing time in tests.
func (t *Tester) Clock() *FakeClock {
	return t.clock
}

// Run evaluates a script against the tree.
func (t *Tester) Run(source string) (any, error) {
	return t.app.Run(source)
}

// Pump runs a single frame.
func (t *Tester) Pump() core.UpdateStats {
	return t.app.Frame()
}

// Advance moves the clock forward by d and runs a frame.
func (t *Tester) Advance(d time.Duration) core.UpdateStats {
	t.clock.Advance(d)
	return t.Pump()
}

// PumpAndSettle runs frames until no frame is requested or the timeout is
// reached. Each frame advances the fake clock by FrameDuration.
func (t *Tester) PumpAndSettle(timeout time.Duration) error {
	var elapsed time.Duration
	for elapsed < timeout {
		t.Pump()
		if !t.app.Context.NeedsFrame() {
			return nil
		}
		t.clock.Advance(FrameDuration)
		elapsed += FrameDuration
	}
	return ErrSettleTimeout
}

// Find evaluates a finder against the whole tree.
func (t *Tester) Find(finder Finder) FinderResult {
	ctx := t.app.Context
	return FinderResult{
		ids:    finder.Evaluate(ctx, ctx.Root()),
		finder: finder,
	}
}

// Property reads a property, returning core.Unset on error.
func (t *Tester) Property(id core.ElementID, name string) any {
	v, err := t.app.Context.Property(id, name)
	if err != nil {
		return core.Unset
	}
	return v
}
