package core

import (
	"slices"

	"github.com/go-guihck/guihck/pkg/errors"
)

// Stack is the construction and navigation cursor used by the scripting
// layer. The top is the current element; the base frame is the root and
// cannot be popped.
type Stack struct {
	c   *Context
	ids []ElementID
}

// Depth returns the stack depth, the base frame included.
func (s *Stack) Depth() int {
	return len(s.ids)
}

// IDs returns a copy of the stack, base first.
func (s *Stack) IDs() []ElementID {
	return slices.Clone(s.ids)
}

func (s *Stack) top(op string) (ElementID, error) {
	id := s.ids[len(s.ids)-1]
	if _, ok := s.c.live(id); !ok {
		return 0, invalidElement(op, id)
	}
	return id, nil
}

func (s *Stack) push(id ElementID) {
	s.ids = append(s.ids, id)
}

// Current returns the top of the stack.
func (s *Stack) Current() (ElementID, error) {
	return s.top("core.Current")
}

// PushElement pushes a live element.
func (s *Stack) PushElement(id ElementID) error {
	if _, ok := s.c.live(id); !ok {
		return invalidElement("core.PushElement", id)
	}
	s.push(id)
	return nil
}

// PushNewElement creates an element of type t under the current element
// and pushes it.
func (s *Stack) PushNewElement(t TypeID) (ElementID, error) {
	parent, err := s.top("core.PushNewElement")
	if err != nil {
		return 0, err
	}
	id, err := s.c.CreateElement(t, parent)
	if err != nil {
		return 0, err
	}
	if err := s.PushElement(id); err != nil {
		return 0, err
	}
	return id, nil
}

// PushNewElementByName is PushNewElement with a type name.
func (s *Stack) PushNewElementByName(name string) (ElementID, error) {
	t, ok := s.c.LookupType(name)
	if !ok {
		return 0, errors.New("core.PushNewElement", errors.KindUnknownType, "type %q", name)
	}
	return s.PushNewElement(t)
}

// PushParent pushes the parent of the current element.
func (s *Stack) PushParent() error {
	const op = "core.PushParent"
	cur, err := s.top(op)
	if err != nil {
		return err
	}
	parent, _ := s.c.Parent(cur)
	if parent == 0 {
		return errors.New(op, errors.KindInvalidElement, "root has no parent").WithElement(uint64(cur))
	}
	s.push(parent)
	return nil
}

// PushChild pushes the child of the current element at index.
func (s *Stack) PushChild(index int) error {
	cur, err := s.top("core.PushChild")
	if err != nil {
		return err
	}
	child, err := s.c.Child(cur, index)
	if err != nil {
		return err
	}
	s.push(child)
	return nil
}

// PushElementByID finds the element whose "id" property equals tag,
// searching the current subtree first and then each ancestor's subtree
// outward, and pushes it.
func (s *Stack) PushElementByID(tag any) (ElementID, error) {
	const op = "core.PushElementByID"
	cur, err := s.top(op)
	if err != nil {
		return 0, err
	}
	id, ok := s.c.FindByID(cur, tag)
	if !ok {
		return 0, errors.New(op, errors.KindInvalidElement, "no element with id %v", tag)
	}
	s.push(id)
	return id, nil
}

// Pop discards the top of the stack.
func (s *Stack) Pop() error {
	if len(s.ids) <= 1 {
		return errors.New("core.Pop", errors.KindStackUnderflow, "")
	}
	s.ids = s.ids[:len(s.ids)-1]
	return nil
}

// ChildCount returns the number of children of the current element.
func (s *Stack) ChildCount() (int, error) {
	cur, err := s.top("core.ChildCount")
	if err != nil {
		return 0, err
	}
	return s.c.ChildCount(cur)
}

// GetElementProperty resolves a property of the current element.
func (s *Stack) GetElementProperty(name string) (any, error) {
	cur, err := s.top("core.GetElementProperty")
	if err != nil {
		return nil, err
	}
	return s.c.Property(cur, name)
}

// SetElementProperty writes a property of the current element.
func (s *Stack) SetElementProperty(name string, value Value) error {
	cur, err := s.top("core.SetElementProperty")
	if err != nil {
		return err
	}
	return s.c.SetProperty(cur, name, value)
}

// Guard returns a func restoring the stack to its current contents.
func (s *Stack) Guard() func() {
	saved := slices.Clone(s.ids)
	return func() {
		s.ids = append(s.ids[:0], saved...)
	}
}

// WithElement pushes id, runs fn, and restores the stack on every exit.
func (s *Stack) WithElement(id ElementID, fn func() error) error {
	restore := s.Guard()
	defer restore()
	if err := s.PushElement(id); err != nil {
		return err
	}
	return fn()
}

// FindByID searches for an element whose "id" property equals tag in the
// subtree of from, then in each ancestor's subtree outward.
func (c *Context) FindByID(from ElementID, tag any) (ElementID, bool) {
	tag = NormalizeLiteral(tag)
	skip := ElementID(0)
	for scope := from; scope != 0; {
		if id, ok := c.findIn(scope, skip, tag); ok {
			return id, true
		}
		e, ok := c.live(scope)
		if !ok {
			break
		}
		skip, scope = scope, e.parent
	}
	return 0, false
}

// findIn searches the subtree of root in pre-order, not descending into skip.
func (c *Context) findIn(root, skip ElementID, tag any) (ElementID, bool) {
	e, ok := c.live(root)
	if !ok {
		return 0, false
	}
	if _, ok := e.props["id"]; ok {
		if v, err := c.resolve(Ref{Element: root, Name: "id"}); err == nil && LiteralEqual(v, tag) {
			return root, true
		}
	}
	for _, child := range e.children {
		if child == skip {
			continue
		}
		if id, ok := c.findIn(child, skip, tag); ok {
			return id, true
		}
	}
	return 0, false
}
