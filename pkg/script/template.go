package script

import (
	"unsafe"

	"github.com/steelseries/golisp"

	"github.com/go-guihck/guihck/pkg/core"
)

const templateObjectType = "guihck-template"

// template is a declarative element description built by element and
// create-element and instantiated by create-elements!.
type template struct {
	typeName string
	args     []*golisp.Data
}

func templateOf(d *golisp.Data) (*template, bool) {
	if !golisp.ObjectP(d) || golisp.ObjectType(d) != templateObjectType {
		return nil, false
	}
	return (*template)(golisp.ObjectValue(d)), true
}

func newTemplate(typeName string, args []*golisp.Data) *golisp.Data {
	t := &template{typeName: typeName, args: flattenArgs(args)}
	return golisp.ObjectWithTypeAndValue(templateObjectType, unsafe.Pointer(t))
}

// flattenArgs splices (arg-list ...) forms into the surrounding list.
func flattenArgs(args []*golisp.Data) []*golisp.Data {
	var out []*golisp.Data
	for _, a := range args {
		if isTagged(a, "arg-list") {
			out = append(out, flattenArgs(golisp.ToArray(golisp.Cdr(a)))...)
			continue
		}
		out = append(out, a)
	}
	return out
}

func isTagged(d *golisp.Data, tag string) bool {
	return golisp.PairP(d) && golisp.SymbolP(golisp.Car(d)) && golisp.StringValue(golisp.Car(d)) == tag
}

// element is (element type arg ...).
func (rt *Runtime) element(args []*golisp.Data) (*golisp.Data, error) {
	name, err := keyArg(args[0])
	if err != nil {
		return nil, err
	}
	return newTemplate(name, args[1:]), nil
}

// createElement is (create-element type [args]) with args as one list.
func (rt *Runtime) createElement(args []*golisp.Data) (*golisp.Data, error) {
	name, err := keyArg(args[0])
	if err != nil {
		return nil, err
	}
	var rest []*golisp.Data
	if len(args) == 2 {
		rest = golisp.ToArray(args[1])
	}
	return newTemplate(name, rest), nil
}

// createElements instantiates each template under the current element
// and returns the new element ids.
func (rt *Runtime) createElements(args []*golisp.Data) (*golisp.Data, error) {
	var ids []*golisp.Data
	for _, a := range args {
		id, err := rt.instantiateArg(a)
		if err != nil {
			return nil, err
		}
		if id != 0 {
			ids = append(ids, idData(id))
		}
	}
	return golisp.ArrayToList(ids), nil
}

// instantiateArg builds a template, or calls a procedure that may
// return one.
func (rt *Runtime) instantiateArg(d *golisp.Data) (core.ElementID, error) {
	if t, ok := templateOf(d); ok {
		return rt.instantiate(t)
	}
	if golisp.FunctionOrPrimitiveP(d) {
		out, err := rt.apply(d, nil)
		if err != nil {
			return 0, err
		}
		if t, ok := templateOf(out); ok {
			return rt.instantiate(t)
		}
		return 0, nil
	}
	return 0, decodeErr("expected an element template, got %s", golisp.String(d))
}

// instantiate creates the element, assigns its id tag, builds children,
// sets properties once children exist, and finally calls its init
// method. The stack is restored on failure.
func (rt *Runtime) instantiate(t *template) (core.ElementID, error) {
	s := rt.stack()
	restore := s.Guard()
	defer restore()

	id, err := s.PushNewElementByName(t.typeName)
	if err != nil {
		return 0, err
	}
	for _, a := range t.args {
		if isTagged(a, "id") {
			if err := rt.ctx.Set(id, "id", toGo(golisp.Cadr(a))); err != nil {
				return 0, err
			}
		}
	}
	for _, a := range t.args {
		if _, ok := templateOf(a); ok || golisp.FunctionOrPrimitiveP(a) {
			if _, err := rt.instantiateArg(a); err != nil {
				return 0, err
			}
		}
	}
	for _, a := range t.args {
		if isTagged(a, "prop") {
			if err := rt.setProperty(id, golisp.Cadr(a), golisp.Caddr(a)); err != nil {
				return 0, err
			}
		}
	}
	if v, err := rt.ctx.Property(id, "init"); err == nil {
		if _, ok := v.(core.Method); ok {
			if _, err := rt.ctx.CallMethod(id, "init"); err != nil {
				return 0, err
			}
		}
	}
	return id, nil
}
