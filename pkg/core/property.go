package core

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-guihck/guihck/pkg/errors"
)

// Property resolves (id, name). Literals yield their value, bindings are
// computed from their dependencies, aliases are followed to their
// terminal pair, and methods yield the Method itself. A property with no
// value yields Unset.
func (c *Context) Property(id ElementID, name string) (any, error) {
	return c.resolve(Ref{Element: id, Name: NormalizeName(name)})
}

func (c *Context) resolve(ref Ref) (any, error) {
	const op = "core.Property"
	e, ok := c.lookup(ref.Element)
	if !ok {
		return nil, invalidElement(op, ref.Element).WithProperty(ref.Name)
	}
	if slices.Contains(c.resolving, ref) || len(c.resolving) >= MaxResolveDepth {
		return nil, errors.New(op, errors.KindBindingCycle, "%s", c.resolvePath(ref)).
			WithElement(uint64(ref.Element)).WithProperty(ref.Name)
	}
	stored, ok := e.props[ref.Name]
	if !ok {
		return Unset, nil
	}
	switch v := stored.(type) {
	case Literal:
		return v.V, nil
	case Method:
		return v, nil
	case Alias:
		c.resolving = append(c.resolving, ref)
		defer c.popResolving()
		return c.resolve(v.Target)
	case Binding:
		c.resolving = append(c.resolving, ref)
		defer c.popResolving()
		args := make([]any, len(v.Deps))
		for i, dep := range v.Deps {
			arg, err := c.resolve(dep)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		out, err := v.Compute(args)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", ref, err)
		}
		return NormalizeLiteral(out), nil
	}
	return Unset, nil
}

func (c *Context) popResolving() {
	c.resolving = c.resolving[:len(c.resolving)-1]
}

func (c *Context) resolvePath(ref Ref) string {
	parts := make([]string, 0, len(c.resolving)+1)
	for _, r := range c.resolving {
		parts = append(parts, r.String())
	}
	parts = append(parts, ref.String())
	return strings.Join(parts, " -> ")
}

// Set stores a literal value. It is shorthand for SetProperty with a
// Literal.
func (c *Context) Set(id ElementID, name string, v any) error {
	return c.SetProperty(id, name, Literal{V: v})
}

// SetProperty stores value at (id, name) and notifies listeners. Literal
// writes to an alias are delegated to the alias terminal; the listeners of
// every pair on the alias chain are notified, terminal first. Bindings and
// aliases that would make (id, name) depend on itself are rejected with
// ErrBindingCycle and nothing is stored.
//
// Listeners run after the value is stored. An error from a listener,
// including ErrBindingCycle from a listener writing back into the pair
// being notified, is returned but does not undo the write.
func (c *Context) SetProperty(id ElementID, name string, value Value) error {
	return c.store("core.SetProperty", id, name, value, true)
}

// ReplaceProperty stores value at (id, name) without alias write-through.
func (c *Context) ReplaceProperty(id ElementID, name string, value Value) error {
	return c.store("core.ReplaceProperty", id, name, value, false)
}

func (c *Context) store(op string, id ElementID, name string, value Value, writeThrough bool) error {
	if value == nil {
		return c.RemoveProperty(id, name)
	}
	e, ok := c.lookup(id)
	if !ok {
		return invalidElement(op, id).WithProperty(name)
	}
	origin := Ref{Element: id, Name: NormalizeName(name)}
	value = normalizeValue(value, id)

	if err := c.checkValue(op, origin, value); err != nil {
		return err
	}

	chain := []Ref{origin}
	target := e
	if _, literal := value.(Literal); literal && writeThrough {
		for {
			last := chain[len(chain)-1]
			alias, ok := target.props[last.Name].(Alias)
			if !ok {
				break
			}
			if slices.Contains(chain, alias.Target) || len(chain) > MaxResolveDepth {
				return errors.New(op, errors.KindBindingCycle, "alias chain through %s", alias.Target).
					WithElement(uint64(id)).WithProperty(origin.Name)
			}
			next, ok := c.lookup(alias.Target.Element)
			if !ok {
				return invalidElement(op, alias.Target.Element).WithProperty(alias.Target.Name)
			}
			chain = append(chain, alias.Target)
			target = next
		}
	}

	for _, ref := range chain {
		if c.notifying[ref] > 0 {
			return errors.New(op, errors.KindBindingCycle, "re-entrant write to %s", ref).
				WithElement(uint64(ref.Element)).WithProperty(ref.Name)
		}
	}
	if c.notifyDepth >= MaxResolveDepth {
		return errors.New(op, errors.KindBindingCycle, "listener depth exceeds %d", MaxResolveDepth).
			WithElement(uint64(id)).WithProperty(origin.Name)
	}

	terminal := chain[len(chain)-1]
	target.props[terminal.Name] = value

	for _, ref := range chain {
		if _, ok := c.updateProps[ref]; ok {
			c.RequestFrame()
			break
		}
	}
	return c.notify(chain)
}

// checkValue rejects binding and alias values whose dependencies are not
// live or would lead back to origin.
func (c *Context) checkValue(op string, origin Ref, value Value) error {
	var refs []Ref
	switch v := value.(type) {
	case Binding:
		refs = v.Deps
	case Alias:
		refs = []Ref{v.Target}
	case Method:
		if v.Fn == nil {
			return errors.New(op, errors.KindUnknown, "nil method").
				WithElement(uint64(origin.Element)).WithProperty(origin.Name)
		}
		return nil
	default:
		return nil
	}
	for _, ref := range refs {
		if _, ok := c.lookup(ref.Element); !ok {
			return invalidElement(op, ref.Element).WithProperty(ref.Name)
		}
	}
	if c.reaches(refs, origin) {
		return errors.New(op, errors.KindBindingCycle, "value depends on itself").
			WithElement(uint64(origin.Element)).WithProperty(origin.Name)
	}
	return nil
}

// reaches reports whether the dependency graph reachable from refs
// contains target.
func (c *Context) reaches(refs []Ref, target Ref) bool {
	seen := make(map[Ref]bool)
	work := slices.Clone(refs)
	for len(work) > 0 {
		ref := work[len(work)-1]
		work = work[:len(work)-1]
		if ref == target {
			return true
		}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		e, ok := c.elements[ref.Element]
		if !ok {
			continue
		}
		switch v := e.props[ref.Name].(type) {
		case Alias:
			work = append(work, v.Target)
		case Binding:
			work = append(work, v.Deps...)
		}
	}
	return false
}

// RemoveProperty deletes (id, name). Listeners are kept.
func (c *Context) RemoveProperty(id ElementID, name string) error {
	e, ok := c.lookup(id)
	if !ok {
		return invalidElement("core.RemoveProperty", id).WithProperty(name)
	}
	delete(e.props, NormalizeName(name))
	return nil
}

// PropertyNames returns the names of id's stored properties, sorted.
func (c *Context) PropertyNames(id ElementID) []string {
	e, ok := c.lookup(id)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(e.props))
	for name := range e.props {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Raw returns the stored variant at (id, name) without resolving it.
func (c *Context) Raw(id ElementID, name string) (Value, bool) {
	e, ok := c.lookup(id)
	if !ok {
		return nil, false
	}
	v, ok := e.props[NormalizeName(name)]
	return v, ok
}

// CallMethod invokes the method stored at (id, name). The element the
// method is bound to is the construction stack top while it runs.
func (c *Context) CallMethod(id ElementID, name string, args ...any) (any, error) {
	const op = "core.CallMethod"
	v, err := c.Property(id, name)
	if err != nil {
		return nil, err
	}
	if IsUnset(v) {
		return nil, errors.New(op, errors.KindPropertyNotFound, "").
			WithElement(uint64(id)).WithProperty(name)
	}
	m, ok := v.(Method)
	if !ok {
		return nil, errors.New(op, errors.KindPropertyNotFound, "%T is not callable", v).
			WithElement(uint64(id)).WithProperty(name)
	}
	for i := range args {
		args[i] = NormalizeLiteral(args[i])
	}
	var out any
	err = c.stack.WithElement(m.Element, func() error {
		var err error
		out, err = m.Fn(c, m.Element, args)
		return err
	})
	return out, err
}

// AddUpdateProperty marks (id, name) so that writes to it request a frame.
func (c *Context) AddUpdateProperty(id ElementID, name string) error {
	if _, ok := c.live(id); !ok {
		return invalidElement("core.AddUpdateProperty", id).WithProperty(name)
	}
	c.updateProps[Ref{Element: id, Name: NormalizeName(name)}] = struct{}{}
	return nil
}
