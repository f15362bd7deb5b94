package script

import (
	"fmt"

	"github.com/steelseries/golisp"

	"github.com/go-guihck/guihck/pkg/core"
	"github.com/go-guihck/guihck/pkg/errors"
)

// Wire tags recognized by decodeValue.
const (
	tagBind   = "bind"
	tagBound  = "bound"
	tagAlias  = "alias"
	tagMethod = "method"
)

// toGo converts an evaluated value into the property literal set.
// Symbols become strings. Procedures and foreign objects are returned as
// *golisp.Data.
func toGo(d *golisp.Data) any {
	switch {
	case d == nil:
		return nil
	case golisp.NilP(d):
		return []any{}
	case golisp.BooleanP(d):
		return golisp.BooleanValue(d)
	case golisp.IntegerP(d):
		return golisp.IntegerValue(d)
	case golisp.FloatP(d):
		return float64(golisp.FloatValue(d))
	case golisp.StringP(d), golisp.SymbolP(d):
		return golisp.StringValue(d)
	case golisp.PairP(d):
		var out []any
		for c := d; golisp.NotNilP(c); c = golisp.Cdr(c) {
			if !golisp.PairP(c) {
				out = append(out, toGo(c))
				break
			}
			out = append(out, toGo(golisp.Car(c)))
		}
		return out
	default:
		return d
	}
}

// fromGo converts a resolved property value into a script value. Methods
// become procedures that run with their element on the stack; Unset
// becomes the empty list.
func (rt *Runtime) fromGo(v any) *golisp.Data {
	switch x := v.(type) {
	case nil:
		return golisp.EmptyCons()
	case *golisp.Data:
		return x
	case bool:
		return golisp.BooleanWithValue(x)
	case int:
		return golisp.IntegerWithValue(int64(x))
	case int64:
		return golisp.IntegerWithValue(x)
	case core.ElementID:
		return golisp.IntegerWithValue(int64(x))
	case float64:
		return golisp.FloatWithValue(float32(x))
	case string:
		return golisp.StringWithValue(x)
	case []any:
		items := make([]*golisp.Data, len(x))
		for i, e := range x {
			items[i] = rt.fromGo(e)
		}
		return golisp.ArrayToList(items)
	case core.UnsetValue:
		return golisp.EmptyCons()
	case core.Method:
		return rt.methodProcedure(x)
	default:
		return golisp.StringWithValue(fmt.Sprint(x))
	}
}

func (rt *Runtime) methodProcedure(m core.Method) *golisp.Data {
	return rt.procedure("method", arity{0, -1}, func(args []*golisp.Data) (*golisp.Data, error) {
		goArgs := make([]any, len(args))
		for i, a := range args {
			goArgs[i] = core.NormalizeLiteral(toGo(a))
		}
		var out any
		err := rt.ctx.Stack().WithElement(m.Element, func() error {
			var err error
			out, err = m.Fn(rt.ctx, m.Element, goArgs)
			return err
		})
		if err != nil {
			return nil, err
		}
		return rt.fromGo(out), nil
	})
}

// decodeValue turns a script value into a property variant for the
// element self. Tagged lists select bindings, aliases, and methods; a
// bare procedure is a method; anything else is a literal.
func (rt *Runtime) decodeValue(d *golisp.Data, self core.ElementID) (core.Value, error) {
	if golisp.FunctionOrPrimitiveP(d) {
		return core.Method{Element: self, Fn: rt.methodFunc(d)}, nil
	}
	if golisp.PairP(d) && golisp.SymbolP(golisp.Car(d)) {
		switch golisp.StringValue(golisp.Car(d)) {
		case tagBind:
			return rt.decodeBind(d, self)
		case tagBound:
			return rt.decodeBound(d, self)
		case tagAlias:
			return rt.decodeAlias(d, self)
		case tagMethod:
			proc := golisp.Cadr(d)
			if !golisp.FunctionOrPrimitiveP(proc) {
				return nil, decodeErr("method expects a procedure, got %s", golisp.String(proc))
			}
			return core.Method{Element: self, Fn: rt.methodFunc(proc)}, nil
		}
	}
	return core.Literal{V: toGo(d)}, nil
}

// decodeBind reads (bind ((elem . key) ...) [proc]).
func (rt *Runtime) decodeBind(d *golisp.Data, self core.ElementID) (core.Value, error) {
	var deps []core.Ref
	for c := golisp.Cadr(d); golisp.NotNilP(c); c = golisp.Cdr(c) {
		pair := golisp.Car(c)
		if !golisp.PairP(pair) {
			return nil, decodeErr("bind dependency must be (element . key), got %s", golisp.String(pair))
		}
		key := golisp.Cdr(pair)
		if golisp.PairP(key) {
			key = golisp.Car(key)
		}
		ref, err := rt.ref(golisp.Car(pair), key, self)
		if err != nil {
			return nil, err
		}
		deps = append(deps, ref)
	}
	return core.NewBinding(rt.computeFunc(golisp.Caddr(d)), deps...), nil
}

// decodeBound reads (bound (elem key elem key ...) [proc]).
func (rt *Runtime) decodeBound(d *golisp.Data, self core.ElementID) (core.Value, error) {
	specs := golisp.ToArray(golisp.Cadr(d))
	if len(specs)%2 != 0 {
		return nil, decodeErr("bound expects element/key pairs, got %d items", len(specs))
	}
	deps := make([]core.Ref, 0, len(specs)/2)
	for i := 0; i < len(specs); i += 2 {
		ref, err := rt.ref(specs[i], specs[i+1], self)
		if err != nil {
			return nil, err
		}
		deps = append(deps, ref)
	}
	return core.NewBinding(rt.computeFunc(golisp.Caddr(d)), deps...), nil
}

// decodeAlias reads (alias elem key).
func (rt *Runtime) decodeAlias(d *golisp.Data, self core.ElementID) (core.Value, error) {
	ref, err := rt.ref(golisp.Cadr(d), golisp.Caddr(d), self)
	if err != nil {
		return nil, err
	}
	return core.Alias{Target: ref}, nil
}

func (rt *Runtime) ref(elem, key *golisp.Data, self core.ElementID) (core.Ref, error) {
	id, err := rt.resolveSpec(elem, self)
	if err != nil {
		return core.Ref{}, err
	}
	name, err := keyArg(key)
	if err != nil {
		return core.Ref{}, err
	}
	return core.Ref{Element: id, Name: name}, nil
}

// resolveSpec resolves an element spec relative to self: an element id,
// the symbols this and parent, or an id tag searched from self outward.
func (rt *Runtime) resolveSpec(d *golisp.Data, self core.ElementID) (core.ElementID, error) {
	const op = "script.resolve"
	switch {
	case golisp.IntegerP(d):
		return elementArg(d)
	case golisp.SymbolP(d) && golisp.StringValue(d) == "this":
		return self, nil
	case golisp.SymbolP(d) && golisp.StringValue(d) == "parent":
		parent, err := rt.ctx.Parent(self)
		if err != nil {
			return 0, err
		}
		if parent == 0 {
			return 0, errors.New(op, errors.KindInvalidElement, "root has no parent")
		}
		return parent, nil
	case golisp.SymbolP(d), golisp.StringP(d):
		tag := golisp.StringValue(d)
		id, ok := rt.ctx.FindByID(self, tag)
		if !ok {
			return 0, errors.New(op, errors.KindInvalidElement, "no element with id %q", tag)
		}
		return id, nil
	}
	return 0, errors.New(op, errors.KindInvalidElement, "bad element spec %s", golisp.String(d))
}

func (rt *Runtime) computeFunc(proc *golisp.Data) core.ComputeFunc {
	if proc == nil || golisp.NilP(proc) {
		return core.Identity
	}
	return func(args []any) (any, error) {
		out, err := rt.apply(proc, args)
		if err != nil {
			return nil, err
		}
		return toGo(out), nil
	}
}

func (rt *Runtime) methodFunc(proc *golisp.Data) core.MethodFunc {
	return func(c *core.Context, self core.ElementID, args []any) (any, error) {
		out, err := rt.apply(proc, args)
		if err != nil {
			return nil, err
		}
		return toGo(out), nil
	}
}

func elementArg(d *golisp.Data) (core.ElementID, error) {
	if !golisp.IntegerP(d) {
		return 0, errors.New("script.element", errors.KindInvalidElement, "expected an element id, got %s", golisp.String(d))
	}
	n := golisp.IntegerValue(d)
	if n <= 0 {
		return 0, errors.New("script.element", errors.KindInvalidElement, "expected an element id, got %d", n)
	}
	return core.ElementID(n), nil
}

func keyArg(d *golisp.Data) (string, error) {
	if golisp.SymbolP(d) || golisp.StringP(d) {
		return golisp.StringValue(d), nil
	}
	return "", decodeErr("property key must be a symbol or string, got %s", golisp.String(d))
}

func intArg(d *golisp.Data) (int, error) {
	if !golisp.IntegerP(d) {
		return 0, decodeErr("expected an integer, got %s", golisp.String(d))
	}
	return int(golisp.IntegerValue(d)), nil
}

func decodeErr(format string, args ...any) *errors.Error {
	return errors.New("script.decode", errors.KindScript, format, args...)
}
