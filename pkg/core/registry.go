package core

import (
	"slices"

	"github.com/go-guihck/guihck/pkg/errors"
)

// TypeID is an opaque handle to a registered element type.
type TypeID uint32

// Behavior is implemented once per concrete element type. The context
// invokes it with the element id and the element's instance data.
type Behavior interface {
	// Init runs once, right after the element is linked under its parent.
	Init(c *Context, id ElementID, data any)
	// Destroy runs once, after the element has left the traversal order.
	Destroy(c *Context, id ElementID, data any)
	// Update runs during the update pass. Returning true marks the pass
	// as changed, which schedules another update pass.
	Update(c *Context, id ElementID, data any) bool
	// Render runs during the render pass, after updates have settled.
	Render(c *Context, id ElementID, data any)
}

// DataAllocator is an optional Behavior extension supplying typed
// instance data in place of a zero-filled byte buffer.
type DataAllocator interface {
	NewData() any
}

// ElementType describes a category of elements.
type ElementType struct {
	Name     string
	Behavior Behavior
	// DataSize is the size of the zero-filled instance buffer handed to
	// callbacks when Behavior does not implement DataAllocator.
	DataSize int
	// Extensions are reserved capability slots. The core stores them and
	// never interprets them.
	Extensions [2]any
}

func (t *ElementType) newData() any {
	if alloc, ok := t.Behavior.(DataAllocator); ok {
		return alloc.NewData()
	}
	if t.DataSize > 0 {
		return make([]byte, t.DataSize)
	}
	return nil
}

// Funcs adapts plain callback functions to Behavior. Nil callbacks are
// no-ops; a nil OnUpdate reports no change.
type Funcs struct {
	OnInit    func(c *Context, id ElementID, data any)
	OnDestroy func(c *Context, id ElementID, data any)
	OnUpdate  func(c *Context, id ElementID, data any) bool
	OnRender  func(c *Context, id ElementID, data any)
}

func (f Funcs) Init(c *Context, id ElementID, data any) {
	if f.OnInit != nil {
		f.OnInit(c, id, data)
	}
}

func (f Funcs) Destroy(c *Context, id ElementID, data any) {
	if f.OnDestroy != nil {
		f.OnDestroy(c, id, data)
	}
}

func (f Funcs) Update(c *Context, id ElementID, data any) bool {
	if f.OnUpdate != nil {
		return f.OnUpdate(c, id, data)
	}
	return false
}

func (f Funcs) Render(c *Context, id ElementID, data any) {
	if f.OnRender != nil {
		f.OnRender(c, id, data)
	}
}

type registry struct {
	byName map[string]TypeID
	types  []*ElementType // index is TypeID-1
}

func (r *registry) get(t TypeID) (*ElementType, bool) {
	if t == 0 || int(t) > len(r.types) {
		return nil, false
	}
	return r.types[t-1], true
}

// Register adds an element type. It fails with ErrDuplicateRegistration
// if name is already registered. Types live as long as the context.
func (c *Context) Register(name string, behavior Behavior, dataSize int) (TypeID, error) {
	return c.RegisterType(ElementType{Name: name, Behavior: behavior, DataSize: dataSize})
}

// RegisterType adds an element type from a full descriptor.
func (c *Context) RegisterType(t ElementType) (TypeID, error) {
	const op = "core.Register"
	if t.Name == "" {
		return 0, errors.New(op, errors.KindUnknownType, "empty type name")
	}
	if _, exists := c.registry.byName[t.Name]; exists {
		return 0, errors.New(op, errors.KindDuplicateRegistration, "type %q", t.Name)
	}
	if t.Behavior == nil {
		t.Behavior = Funcs{}
	}
	if t.DataSize < 0 {
		t.DataSize = 0
	}
	if c.registry.byName == nil {
		c.registry.byName = make(map[string]TypeID)
	}
	desc := t
	c.registry.types = append(c.registry.types, &desc)
	id := TypeID(len(c.registry.types))
	c.registry.byName[t.Name] = id
	c.log.Debugf("registered element type %q as %d", t.Name, id)
	return id, nil
}

// LookupType returns the handle registered under name.
func (c *Context) LookupType(name string) (TypeID, bool) {
	id, ok := c.registry.byName[name]
	return id, ok
}

// TypeInfo returns the descriptor registered for t.
func (c *Context) TypeInfo(t TypeID) (ElementType, bool) {
	desc, ok := c.registry.get(t)
	if !ok {
		return ElementType{}, false
	}
	return *desc, true
}

// TypeName returns the name registered for t, or "" for unknown handles.
func (c *Context) TypeName(t TypeID) string {
	if desc, ok := c.registry.get(t); ok {
		return desc.Name
	}
	return ""
}

// Types returns the registered type names in sorted order.
func (c *Context) Types() []string {
	names := make([]string, 0, len(c.registry.byName))
	for name := range c.registry.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
