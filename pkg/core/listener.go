package core

import (
	"slices"

	"github.com/go-guihck/guihck/pkg/errors"
)

// ListenerID is a handle returned by AddListener.
type ListenerID uint64

// ListenerFunc is invoked synchronously after a property write with the
// resolved value of the written pair. A non-nil error stops notification
// and is returned from the write.
type ListenerFunc func(c *Context, id ElementID, name string, value any) error

type listener struct {
	id  ListenerID
	ref Ref
	fn  ListenerFunc
}

type listenerTable struct {
	next  ListenerID
	byRef map[Ref][]*listener
	byID  map[ListenerID]*listener
}

func (t *listenerTable) add(ref Ref, fn ListenerFunc) ListenerID {
	if t.byRef == nil {
		t.byRef = make(map[Ref][]*listener)
		t.byID = make(map[ListenerID]*listener)
	}
	t.next++
	l := &listener{id: t.next, ref: ref, fn: fn}
	t.byRef[ref] = append(t.byRef[ref], l)
	t.byID[l.id] = l
	return l.id
}

func (t *listenerTable) remove(id ListenerID) bool {
	l, ok := t.byID[id]
	if !ok {
		return false
	}
	delete(t.byID, id)
	list := slices.DeleteFunc(t.byRef[l.ref], func(x *listener) bool { return x.id == id })
	if len(list) == 0 {
		delete(t.byRef, l.ref)
	} else {
		t.byRef[l.ref] = list
	}
	return true
}

func (t *listenerTable) snapshot(ref Ref) []*listener {
	return slices.Clone(t.byRef[ref])
}

func (t *listenerTable) dropElement(id ElementID) {
	for ref, list := range t.byRef {
		if ref.Element != id {
			continue
		}
		for _, l := range list {
			delete(t.byID, l.id)
		}
		delete(t.byRef, ref)
	}
}

// AddListener registers fn for writes to (id, name).
func (c *Context) AddListener(id ElementID, name string, fn ListenerFunc) (ListenerID, error) {
	const op = "core.AddListener"
	if _, ok := c.live(id); !ok {
		return 0, invalidElement(op, id)
	}
	if fn == nil {
		return 0, errors.New(op, errors.KindUnknown, "nil listener").WithElement(uint64(id)).WithProperty(name)
	}
	return c.listeners.add(Ref{Element: id, Name: NormalizeName(name)}, fn), nil
}

// RemoveListener unregisters a listener. It reports whether the handle
// was registered.
func (c *Context) RemoveListener(id ListenerID) bool {
	return c.listeners.remove(id)
}

// ListenerCount returns the number of listeners on (id, name).
func (c *Context) ListenerCount(id ElementID, name string) int {
	return len(c.listeners.byRef[Ref{Element: id, Name: NormalizeName(name)}])
}

// notify runs the listeners of each pair in chain, last pair first.
func (c *Context) notify(chain []Ref) error {
	for i := len(chain) - 1; i >= 0; i-- {
		if err := c.notifyRef(chain[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) notifyRef(ref Ref) error {
	list := c.listeners.snapshot(ref)
	if len(list) == 0 {
		return nil
	}
	value, err := c.resolve(ref)
	if err != nil {
		return err
	}
	c.notifying[ref]++
	c.notifyDepth++
	defer func() {
		c.notifyDepth--
		if c.notifying[ref]--; c.notifying[ref] <= 0 {
			delete(c.notifying, ref)
		}
	}()
	for _, l := range list {
		if _, ok := c.listeners.byID[l.id]; !ok {
			continue
		}
		if err := l.fn(c, ref.Element, ref.Name, value); err != nil {
			return err
		}
	}
	return nil
}
