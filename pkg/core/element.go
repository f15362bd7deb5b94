package core

import (
	"slices"

	"github.com/go-guihck/guihck/pkg/errors"
)

type element struct {
	id       ElementID
	typ      TypeID
	desc     *ElementType
	parent   ElementID
	children []ElementID
	props    map[string]Value
	data     any

	active     bool
	destroying bool
	// stamp is the last pass that visited this element.
	stamp uint64
}

func (c *Context) allocate(t TypeID, desc *ElementType) *element {
	e := &element{
		id:    c.nextID,
		typ:   t,
		desc:  desc,
		props: make(map[string]Value),
		stamp: c.pass,
	}
	if desc != nil {
		e.data = desc.newData()
	}
	c.nextID++
	c.elements[e.id] = e
	return e
}

// lookup returns any element still in the store, including one whose
// destroy is in progress.
func (c *Context) lookup(id ElementID) (*element, bool) {
	e, ok := c.elements[id]
	return e, ok
}

// live returns an element that is not being destroyed.
func (c *Context) live(id ElementID) (*element, bool) {
	e, ok := c.elements[id]
	if !ok || e.destroying {
		return nil, false
	}
	return e, true
}

// CreateElement creates an element of type t as the last child of parent
// and runs its Init callback. A panic in Init unlinks the element again
// and is returned as a *errors.PanicError.
func (c *Context) CreateElement(t TypeID, parent ElementID) (id ElementID, err error) {
	const op = "core.CreateElement"
	desc, ok := c.registry.get(t)
	if !ok {
		return 0, errors.New(op, errors.KindUnknownType, "type %d", t)
	}
	p, ok := c.live(parent)
	if !ok {
		return 0, invalidElement(op, parent)
	}

	e := c.allocate(t, desc)
	e.parent = p.id
	p.children = append(p.children, e.id)

	defer func() {
		if r := recover(); r != nil {
			// Children Init already created are torn down like a
			// destroyed subtree; e itself never finished Init.
			order := c.collectSubtree(e)
			c.unlink(e)
			for _, d := range order[:len(order)-1] {
				c.runDestroy(d)
			}
			c.release(e)
			id, err = 0, errors.Recovered(op, uint64(e.id), r)
		}
	}()
	desc.Behavior.Init(c, e.id, e.data)

	if _, ok := c.elements[e.id]; !ok || e.destroying {
		// Init destroyed its own element.
		return e.id, nil
	}
	e.active = true
	c.structureChanged()
	c.log.Debugf("created %s element %d under %d", desc.Name, e.id, p.id)
	return e.id, nil
}

// CreateElementByName creates an element of the type registered as name.
func (c *Context) CreateElementByName(name string, parent ElementID) (ElementID, error) {
	t, ok := c.LookupType(name)
	if !ok {
		return 0, errors.New("core.CreateElement", errors.KindUnknownType, "type %q", name)
	}
	return c.CreateElement(t, parent)
}

// DestroyElement removes id and its subtree. The whole subtree leaves the
// traversal order before any Destroy callback runs; callbacks then run
// once per element, children before parents.
func (c *Context) DestroyElement(id ElementID) error {
	const op = "core.DestroyElement"
	e, ok := c.live(id)
	if !ok || id == RootID {
		return invalidElement(op, id)
	}

	order := c.collectSubtree(e)
	c.unlink(e)

	for _, d := range order {
		c.runDestroy(d)
	}
	c.structureChanged()
	c.log.Debugf("destroyed element %d (%d elements)", id, len(order))
	return nil
}

// collectSubtree takes e and its descendants out of traversal and returns
// them children first.
func (c *Context) collectSubtree(e *element) []*element {
	var order []*element
	var collect func(e *element)
	collect = func(e *element) {
		e.active = false
		e.destroying = true
		for _, child := range e.children {
			if ce, ok := c.elements[child]; ok {
				collect(ce)
			}
		}
		order = append(order, e)
	}
	collect(e)
	return order
}

func (c *Context) runDestroy(e *element) {
	if e.desc != nil {
		func() {
			defer errors.Recover("core.DestroyElement")
			e.desc.Behavior.Destroy(c, e.id, e.data)
		}()
	}
	c.release(e)
}

// release drops e's listeners, update properties, and storage.
func (c *Context) release(e *element) {
	c.listeners.dropElement(e.id)
	for ref := range c.updateProps {
		if ref.Element == e.id {
			delete(c.updateProps, ref)
		}
	}
	e.props = nil
	e.data = nil
	e.children = nil
	delete(c.elements, e.id)
}

// Reparent moves id to the end of newParent's children.
func (c *Context) Reparent(id, newParent ElementID) error {
	const op = "core.Reparent"
	e, ok := c.live(id)
	if !ok || id == RootID {
		return invalidElement(op, id)
	}
	p, ok := c.live(newParent)
	if !ok {
		return invalidElement(op, newParent)
	}
	if newParent == id || c.isAncestor(id, newParent) {
		return errors.New(op, errors.KindReparentCycle, "%d under %d", id, newParent).WithElement(uint64(id))
	}
	c.unlink(e)
	e.parent = p.id
	p.children = append(p.children, e.id)
	c.structureChanged()
	return nil
}

// isAncestor reports whether anc is a proper ancestor of id.
func (c *Context) isAncestor(anc, id ElementID) bool {
	e, ok := c.elements[id]
	for ok && e.parent != 0 {
		if e.parent == anc {
			return true
		}
		e, ok = c.elements[e.parent]
	}
	return false
}

func (c *Context) unlink(e *element) {
	if p, ok := c.elements[e.parent]; ok {
		if i := slices.Index(p.children, e.id); i >= 0 {
			p.children = slices.Delete(p.children, i, i+1)
		}
	}
	e.parent = 0
}

// Root returns the root element id.
func (c *Context) Root() ElementID {
	return RootID
}

// Parent returns the parent of id. The root reports 0.
func (c *Context) Parent(id ElementID) (ElementID, error) {
	e, ok := c.live(id)
	if !ok {
		return 0, invalidElement("core.Parent", id)
	}
	return e.parent, nil
}

// Children returns a copy of id's child list.
func (c *Context) Children(id ElementID) []ElementID {
	e, ok := c.live(id)
	if !ok {
		return nil
	}
	return slices.Clone(e.children)
}

// Child returns the child of id at index.
func (c *Context) Child(id ElementID, index int) (ElementID, error) {
	const op = "core.Child"
	e, ok := c.live(id)
	if !ok {
		return 0, invalidElement(op, id)
	}
	if index < 0 || index >= len(e.children) {
		return 0, errors.New(op, errors.KindInvalidElement, "child index %d out of range [0,%d)", index, len(e.children)).WithElement(uint64(id))
	}
	return e.children[index], nil
}

// ChildCount returns the number of children of id.
func (c *Context) ChildCount(id ElementID) (int, error) {
	e, ok := c.live(id)
	if !ok {
		return 0, invalidElement("core.ChildCount", id)
	}
	return len(e.children), nil
}

// Type returns the type of id. The root has no type.
func (c *Context) Type(id ElementID) (TypeID, bool) {
	e, ok := c.live(id)
	if !ok || e.desc == nil {
		return 0, false
	}
	return e.typ, true
}

// Exists reports whether id names a live element.
func (c *Context) Exists(id ElementID) bool {
	_, ok := c.live(id)
	return ok
}

// Data returns the instance data of id.
func (c *Context) Data(id ElementID) any {
	if e, ok := c.lookup(id); ok {
		return e.data
	}
	return nil
}

// Len returns the number of live elements, the root included.
func (c *Context) Len() int {
	n := 0
	for _, e := range c.elements {
		if !e.destroying {
			n++
		}
	}
	return n
}

// Walk visits active elements in pre-order starting at the root. Returning
// false from fn skips the element's children.
func (c *Context) Walk(fn func(id ElementID, depth int) bool) {
	var visit func(id ElementID, depth int)
	visit = func(id ElementID, depth int) {
		e, ok := c.elements[id]
		if !ok || !e.active {
			return
		}
		if !fn(id, depth) {
			return
		}
		for _, child := range slices.Clone(e.children) {
			visit(child, depth+1)
		}
	}
	visit(RootID, 0)
}
