package core

import (
	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/go-guihck/guihck/pkg/errors"
)

// ElementID identifies an element within one Context. Ids are assigned
// from 1 upward and never reused while the context lives.
type ElementID uint64

const (
	// RootID is the id of the root element every Context starts with.
	RootID ElementID = 1

	// MaxResolveDepth bounds alias chains, binding nesting, and listener
	// notification depth.
	MaxResolveDepth = 64

	// DefaultMaxUpdatePasses is the number of update passes Update runs
	// before giving up on reaching a fixed point.
	DefaultMaxUpdatePasses = 4
)

// ScriptRuntime evaluates script source against a Context. Implementations
// reach the tree only through the construction stack.
type ScriptRuntime interface {
	Eval(source string) (any, error)
	Close() error
}

// Context owns an element tree, its type registry, the construction stack,
// and the scheduler state. A Context is not safe for concurrent use.
type Context struct {
	elements map[ElementID]*element
	nextID   ElementID
	registry registry
	stack    *Stack

	listeners   listenerTable
	resolving   []Ref
	notifying   map[Ref]int
	notifyDepth int
	updateProps map[Ref]struct{}

	pass            uint64
	phase           phase
	structureDirty  bool
	needsFrame      bool
	onNeedsFrame    func()
	maxUpdatePasses int

	script  ScriptRuntime
	log     commonlog.Logger
	session uuid.UUID
	closed  bool
}

// Option configures a Context.
type Option func(*Context)

// WithMaxUpdatePasses sets how many update passes Update may run before
// it stops and reports an unsettled tree. Values below 1 are ignored.
func WithMaxUpdatePasses(n int) Option {
	return func(c *Context) {
		if n >= 1 {
			c.maxUpdatePasses = n
		}
	}
}

// WithLogger replaces the context logger.
func WithLogger(log commonlog.Logger) Option {
	return func(c *Context) {
		if log != nil {
			c.log = log
		}
	}
}

// WithOnNeedsFrame installs the callback invoked when the context starts
// needing a frame.
func WithOnNeedsFrame(fn func()) Option {
	return func(c *Context) {
		c.onNeedsFrame = fn
	}
}

// NewContext creates a context holding only the root element, with the
// root as the construction stack's base frame.
func NewContext(opts ...Option) *Context {
	c := &Context{
		elements:        make(map[ElementID]*element),
		nextID:          RootID,
		notifying:       make(map[Ref]int),
		updateProps:     make(map[Ref]struct{}),
		maxUpdatePasses: DefaultMaxUpdatePasses,
		log:             commonlog.GetLogger("guihck.core"),
		session:         uuid.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	root := c.allocate(0, nil)
	root.active = true
	c.stack = &Stack{c: c, ids: []ElementID{root.id}}
	c.log.Debugf("context %s created", c.session)
	return c
}

// SessionID returns the random id assigned to this context.
func (c *Context) SessionID() uuid.UUID {
	return c.session
}

// Stack returns the construction stack.
func (c *Context) Stack() *Stack {
	return c.stack
}

// MaxUpdatePasses returns the configured update pass cap.
func (c *Context) MaxUpdatePasses() int {
	return c.maxUpdatePasses
}

// SetOnNeedsFrame replaces the needs-frame callback.
func (c *Context) SetOnNeedsFrame(fn func()) {
	c.onNeedsFrame = fn
}

// AttachScript installs the script runtime used by RunScript. Any
// previously attached runtime is returned to the caller, not closed.
func (c *Context) AttachScript(rt ScriptRuntime) ScriptRuntime {
	prev := c.script
	c.script = rt
	return prev
}

// Script returns the attached script runtime, or nil.
func (c *Context) Script() ScriptRuntime {
	return c.script
}

// RunScript evaluates source with the attached runtime. If evaluation
// fails, the construction stack is restored to its depth before the call.
func (c *Context) RunScript(source string) (any, error) {
	if c.script == nil {
		return nil, errors.New("core.RunScript", errors.KindScript, "no script runtime attached")
	}
	restore := c.stack.Guard()
	v, err := c.script.Eval(source)
	if err != nil {
		restore()
		return nil, err
	}
	return v, nil
}

// Close destroys every element below the root and closes the attached
// script runtime. The context must not be used afterwards.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	root := c.elements[RootID]
	for _, child := range append([]ElementID(nil), root.children...) {
		if err := c.DestroyElement(child); err != nil {
			c.log.Warningf("close: %v", err)
		}
	}
	c.log.Debugf("context %s closed", c.session)
	if c.script != nil {
		rt := c.script
		c.script = nil
		return rt.Close()
	}
	return nil
}

func invalidElement(op string, id ElementID) *errors.Error {
	return errors.New(op, errors.KindInvalidElement, "").WithElement(uint64(id))
}
