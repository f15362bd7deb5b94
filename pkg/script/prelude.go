package script

import (
	"github.com/steelseries/golisp"

	"github.com/go-guihck/guihck/pkg/core"
	"github.com/go-guihck/guihck/pkg/errors"
)

// installPrelude binds the convenience procedures scripts use on top of
// the stack primitives. Forms taking an optional leading element default
// to the current element.
func (rt *Runtime) installPrelude() error {
	if err := rt.install([]definition{
		{"this", arity{0, 0}, rt.getElement},
		{"parent", arity{0, 1}, rt.parent},
		{"child", arity{1, 2}, rt.child},
		{"children", arity{0, 1}, rt.children},
		{"find-element", arity{1, 1}, rt.findElement},
		{"get-prop", arity{1, 2}, rt.getProp},
		{"set-prop!", arity{2, 3}, rt.setProp},
		{"set-method!", arity{2, 3}, rt.setMethod},
		{"call", arity{1, -1}, rt.call},
		{"bind", arity{2, 3}, rt.bind},
		{"bound", arity{1, 2}, rt.bound},
		{"prop", arity{2, 2}, prop},
		{"alias", arity{3, 3}, aliasProp},
		{"method", arity{2, 2}, methodProp},
		{"id", arity{1, 1}, idArg},
		{"arg-list", arity{0, -1}, argList},
		{"element", arity{1, -1}, rt.element},
		{"create-element", arity{1, 2}, rt.createElement},
		{"create-elements!", arity{0, -1}, rt.createElements},
		{"composite", arity{1, -1}, rt.composite},
	}); err != nil {
		return err
	}
	return rt.alias("unbind", "remove-element-property-listener!")
}

// elementAndRest splits an optional leading element off args. The element
// is an id or a spec resolved from the current element.
func (rt *Runtime) elementAndRest(args []*golisp.Data, full int) (core.ElementID, []*golisp.Data, error) {
	if len(args) != full {
		id, err := rt.current()
		return id, args, err
	}
	if golisp.IntegerP(args[0]) {
		id, err := elementArg(args[0])
		return id, args[1:], err
	}
	self, err := rt.current()
	if err != nil {
		return 0, nil, err
	}
	id, err := rt.resolveSpec(args[0], self)
	return id, args[1:], err
}

func (rt *Runtime) parent(args []*golisp.Data) (*golisp.Data, error) {
	id, _, err := rt.elementAndRest(args, 1)
	if err != nil {
		return nil, err
	}
	parent, err := rt.ctx.Parent(id)
	if err != nil {
		return nil, err
	}
	if parent == 0 {
		return nil, errors.New("script.parent", errors.KindInvalidElement, "root has no parent")
	}
	return idData(parent), nil
}

func (rt *Runtime) child(args []*golisp.Data) (*golisp.Data, error) {
	id, rest, err := rt.elementAndRest(args, 2)
	if err != nil {
		return nil, err
	}
	i, err := intArg(rest[0])
	if err != nil {
		return nil, err
	}
	child, err := rt.ctx.Child(id, i)
	if err != nil {
		return nil, err
	}
	return idData(child), nil
}

func (rt *Runtime) children(args []*golisp.Data) (*golisp.Data, error) {
	id, _, err := rt.elementAndRest(args, 1)
	if err != nil {
		return nil, err
	}
	if _, err := rt.ctx.ChildCount(id); err != nil {
		return nil, err
	}
	ids := rt.ctx.Children(id)
	items := make([]*golisp.Data, len(ids))
	for i, c := range ids {
		items[i] = idData(c)
	}
	return golisp.ArrayToList(items), nil
}

func (rt *Runtime) findElement(args []*golisp.Data) (*golisp.Data, error) {
	restore := rt.stack().Guard()
	defer restore()
	found, err := rt.stack().PushElementByID(toGo(args[0]))
	if err != nil {
		return nil, err
	}
	return idData(found), nil
}

func (rt *Runtime) getProp(args []*golisp.Data) (*golisp.Data, error) {
	id, rest, err := rt.elementAndRest(args, 2)
	if err != nil {
		return nil, err
	}
	key, err := keyArg(rest[0])
	if err != nil {
		return nil, err
	}
	v, err := rt.ctx.Property(id, key)
	if err != nil {
		return nil, err
	}
	return rt.fromGo(v), nil
}

func (rt *Runtime) setProp(args []*golisp.Data) (*golisp.Data, error) {
	id, rest, err := rt.elementAndRest(args, 3)
	if err != nil {
		return nil, err
	}
	return nil, rt.setProperty(id, rest[0], rest[1])
}

func (rt *Runtime) setMethod(args []*golisp.Data) (*golisp.Data, error) {
	id, rest, err := rt.elementAndRest(args, 3)
	if err != nil {
		return nil, err
	}
	key, err := keyArg(rest[0])
	if err != nil {
		return nil, err
	}
	if !golisp.FunctionOrPrimitiveP(rest[1]) {
		return nil, decodeErr("set-method! expects a procedure, got %s", golisp.String(rest[1]))
	}
	return nil, rt.ctx.SetProperty(id, key, core.Method{Element: id, Fn: rt.methodFunc(rest[1])})
}

// call invokes a method: (call key args...) on the current element or
// (call elem key args...).
func (rt *Runtime) call(args []*golisp.Data) (*golisp.Data, error) {
	if golisp.IntegerP(args[0]) {
		if len(args) < 2 {
			return nil, decodeErr("call expects a method name after the element")
		}
		id, err := elementArg(args[0])
		if err != nil {
			return nil, err
		}
		return rt.invoke(id, args[1], args[2:])
	}
	id, err := rt.current()
	if err != nil {
		return nil, err
	}
	return rt.invoke(id, args[0], args[1:])
}

// bind registers a listener: (bind key proc) or (bind elem key proc).
func (rt *Runtime) bind(args []*golisp.Data) (*golisp.Data, error) {
	id, rest, err := rt.elementAndRest(args, 3)
	if err != nil {
		return nil, err
	}
	return rt.listen(id, rest[0], rest[1])
}

// bound builds the wire form of a binding; element specs are resolved
// against the element that receives it.
func (rt *Runtime) bound(args []*golisp.Data) (*golisp.Data, error) {
	items := []*golisp.Data{golisp.Intern(tagBound), args[0]}
	if len(args) == 2 {
		items = append(items, args[1])
	}
	return golisp.ArrayToList(items), nil
}

func prop(args []*golisp.Data) (*golisp.Data, error) {
	return golisp.ArrayToList([]*golisp.Data{golisp.Intern("prop"), args[0], args[1]}), nil
}

// aliasProp is (alias key elem aliased).
func aliasProp(args []*golisp.Data) (*golisp.Data, error) {
	value := golisp.ArrayToList([]*golisp.Data{golisp.Intern(tagAlias), args[1], args[2]})
	return prop([]*golisp.Data{args[0], value})
}

// methodProp is (method key proc).
func methodProp(args []*golisp.Data) (*golisp.Data, error) {
	value := golisp.ArrayToList([]*golisp.Data{golisp.Intern(tagMethod), args[1]})
	return prop([]*golisp.Data{args[0], value})
}

func idArg(args []*golisp.Data) (*golisp.Data, error) {
	return golisp.ArrayToList([]*golisp.Data{golisp.Intern("id"), args[0]}), nil
}

func argList(args []*golisp.Data) (*golisp.Data, error) {
	return golisp.ArrayToList(append([]*golisp.Data{golisp.Intern("arg-list")}, args...)), nil
}

// composite returns a constructor that prepends default template args:
// ((composite element 'button (prop 'color "red")) (id 'ok)).
func (rt *Runtime) composite(args []*golisp.Data) (*golisp.Data, error) {
	constructor := args[0]
	if !golisp.FunctionOrPrimitiveP(constructor) {
		return nil, decodeErr("composite expects a procedure, got %s", golisp.String(constructor))
	}
	defaults := append([]*golisp.Data(nil), args[1:]...)
	return rt.procedure("composite", arity{0, -1}, func(extra []*golisp.Data) (*golisp.Data, error) {
		all := append(append([]*golisp.Data(nil), defaults...), extra...)
		rt.enter()
		defer rt.leave()
		return golisp.ApplyWithoutEval(constructor, golisp.ArrayToList(all), rt.env)
	}), nil
}
