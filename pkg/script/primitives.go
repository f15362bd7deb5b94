package script

import (
	"github.com/steelseries/golisp"
	"golang.org/x/mod/semver"

	"github.com/go-guihck/guihck/pkg/core"
	"github.com/go-guihck/guihck/pkg/errors"
)

type definition struct {
	name string
	ar   arity
	fn   primitiveFunc
}

func (rt *Runtime) install(defs []definition) error {
	for _, d := range defs {
		if err := rt.define(d.name, d.ar, d.fn); err != nil {
			return err
		}
	}
	return nil
}

// installPrimitives binds the construction stack primitives.
func (rt *Runtime) installPrimitives() error {
	return rt.install([]definition{
		{"push-element!", arity{1, 1}, rt.pushElement},
		{"push-new-element!", arity{1, 1}, rt.pushNewElement},
		{"push-parent-element!", arity{0, 0}, rt.pushParentElement},
		{"push-child-element!", arity{1, 1}, rt.pushChildElement},
		{"push-element-by-id!", arity{1, 1}, rt.pushElementByID},
		{"pop-element!", arity{0, 0}, rt.popElement},
		{"get-element", arity{0, 0}, rt.getElement},
		{"get-element-child-count", arity{0, 0}, rt.getElementChildCount},
		{"get-element-property", arity{1, 1}, rt.getElementProperty},
		{"set-element-property!", arity{2, 2}, rt.setElementProperty},
		{"add-element-property-listener!", arity{3, 3}, rt.addListener},
		{"remove-element-property-listener!", arity{1, 1}, rt.removeListener},
		{"destroy-element!", arity{0, 1}, rt.destroyElement},
		{"reparent-element!", arity{2, 2}, rt.reparentElement},
		{"call-method", arity{1, -1}, rt.callMethod},
		{"guihck-require", arity{1, 1}, rt.require},
	})
}

func (rt *Runtime) stack() *core.Stack {
	return rt.ctx.Stack()
}

func (rt *Runtime) current() (core.ElementID, error) {
	return rt.stack().Current()
}

func idData(id core.ElementID) *golisp.Data {
	return golisp.IntegerWithValue(int64(id))
}

func (rt *Runtime) pushElement(args []*golisp.Data) (*golisp.Data, error) {
	id, err := elementArg(args[0])
	if err != nil {
		return nil, err
	}
	return nil, rt.stack().PushElement(id)
}

func (rt *Runtime) pushNewElement(args []*golisp.Data) (*golisp.Data, error) {
	name, err := keyArg(args[0])
	if err != nil {
		return nil, err
	}
	id, err := rt.stack().PushNewElementByName(name)
	if err != nil {
		return nil, err
	}
	return idData(id), nil
}

func (rt *Runtime) pushParentElement([]*golisp.Data) (*golisp.Data, error) {
	return nil, rt.stack().PushParent()
}

func (rt *Runtime) pushChildElement(args []*golisp.Data) (*golisp.Data, error) {
	i, err := intArg(args[0])
	if err != nil {
		return nil, err
	}
	return nil, rt.stack().PushChild(i)
}

func (rt *Runtime) pushElementByID(args []*golisp.Data) (*golisp.Data, error) {
	id, err := rt.stack().PushElementByID(toGo(args[0]))
	if err != nil {
		return nil, err
	}
	return idData(id), nil
}

func (rt *Runtime) popElement([]*golisp.Data) (*golisp.Data, error) {
	return nil, rt.stack().Pop()
}

func (rt *Runtime) getElement([]*golisp.Data) (*golisp.Data, error) {
	id, err := rt.current()
	if err != nil {
		return nil, err
	}
	return idData(id), nil
}

func (rt *Runtime) getElementChildCount([]*golisp.Data) (*golisp.Data, error) {
	n, err := rt.stack().ChildCount()
	if err != nil {
		return nil, err
	}
	return golisp.IntegerWithValue(int64(n)), nil
}

func (rt *Runtime) getElementProperty(args []*golisp.Data) (*golisp.Data, error) {
	key, err := keyArg(args[0])
	if err != nil {
		return nil, err
	}
	v, err := rt.stack().GetElementProperty(key)
	if err != nil {
		return nil, err
	}
	return rt.fromGo(v), nil
}

func (rt *Runtime) setElementProperty(args []*golisp.Data) (*golisp.Data, error) {
	id, err := rt.current()
	if err != nil {
		return nil, err
	}
	return nil, rt.setProperty(id, args[0], args[1])
}

func (rt *Runtime) setProperty(id core.ElementID, key, value *golisp.Data) error {
	name, err := keyArg(key)
	if err != nil {
		return err
	}
	v, err := rt.decodeValue(value, id)
	if err != nil {
		return err
	}
	return rt.ctx.SetProperty(id, name, v)
}

func (rt *Runtime) addListener(args []*golisp.Data) (*golisp.Data, error) {
	id, err := elementArg(args[0])
	if err != nil {
		return nil, err
	}
	return rt.listen(id, args[1], args[2])
}

func (rt *Runtime) listen(id core.ElementID, key, proc *golisp.Data) (*golisp.Data, error) {
	name, err := keyArg(key)
	if err != nil {
		return nil, err
	}
	if !golisp.FunctionOrPrimitiveP(proc) {
		return nil, decodeErr("listener must be a procedure, got %s", golisp.String(proc))
	}
	handle, err := rt.ctx.AddListener(id, name, func(c *core.Context, id core.ElementID, name string, v any) error {
		_, err := rt.apply(proc, []any{v})
		return err
	})
	if err != nil {
		return nil, err
	}
	return golisp.IntegerWithValue(int64(handle)), nil
}

func (rt *Runtime) removeListener(args []*golisp.Data) (*golisp.Data, error) {
	n, err := intArg(args[0])
	if err != nil {
		return nil, err
	}
	return golisp.BooleanWithValue(rt.ctx.RemoveListener(core.ListenerID(n))), nil
}

func (rt *Runtime) destroyElement(args []*golisp.Data) (*golisp.Data, error) {
	var id core.ElementID
	var err error
	if len(args) == 1 {
		id, err = elementArg(args[0])
	} else {
		id, err = rt.current()
	}
	if err != nil {
		return nil, err
	}
	return nil, rt.ctx.DestroyElement(id)
}

func (rt *Runtime) reparentElement(args []*golisp.Data) (*golisp.Data, error) {
	id, err := elementArg(args[0])
	if err != nil {
		return nil, err
	}
	parent, err := elementArg(args[1])
	if err != nil {
		return nil, err
	}
	return nil, rt.ctx.Reparent(id, parent)
}

func (rt *Runtime) callMethod(args []*golisp.Data) (*golisp.Data, error) {
	id, err := rt.current()
	if err != nil {
		return nil, err
	}
	return rt.invoke(id, args[0], args[1:])
}

func (rt *Runtime) invoke(id core.ElementID, key *golisp.Data, args []*golisp.Data) (*golisp.Data, error) {
	name, err := keyArg(key)
	if err != nil {
		return nil, err
	}
	goArgs := make([]any, len(args))
	for i, a := range args {
		goArgs[i] = toGo(a)
	}
	out, err := rt.ctx.CallMethod(id, name, goArgs...)
	if err != nil {
		return nil, err
	}
	return rt.fromGo(out), nil
}

func (rt *Runtime) require(args []*golisp.Data) (*golisp.Data, error) {
	const op = "script.require"
	want, err := keyArg(args[0])
	if err != nil {
		return nil, err
	}
	if want != "" && want[0] != 'v' {
		want = "v" + want
	}
	if !semver.IsValid(want) {
		return nil, errors.New(op, errors.KindScript, "invalid version %q", want)
	}
	if semver.Compare(APIVersion, want) < 0 {
		return nil, errors.New(op, errors.KindScript, "script requires API %s, runtime provides %s", want, APIVersion)
	}
	return golisp.StringWithValue(APIVersion), nil
}
