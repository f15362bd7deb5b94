package script

import (
	"fmt"
	"os"
	"sync"

	"github.com/steelseries/golisp"
	"github.com/tliron/commonlog"

	"github.com/go-guihck/guihck/pkg/core"
	"github.com/go-guihck/guihck/pkg/errors"
)

// APIVersion is the script API version checked by guihck-require.
const APIVersion = "v1.2.0"

var log = commonlog.GetLogger("guihck.script")

// evalMu serializes top-level evaluation across runtimes; golisp keeps its
// global frame and symbol table process-wide.
var evalMu sync.Mutex

// Runtime is a golisp evaluation environment bound to one core.Context.
// Scripts reach the element tree only through the construction stack
// primitives installed in the environment.
type Runtime struct {
	ctx *core.Context
	env *golisp.SymbolTableFrame

	depth   int
	lastErr error
	closed  bool
}

// New creates a runtime for ctx and attaches it as ctx's script runtime.
func New(ctx *core.Context) (*Runtime, error) {
	rt := &Runtime{ctx: ctx}
	rt.env = golisp.NewSymbolTableFrameBelow(golisp.Global, "guihck-"+ctx.SessionID().String())

	rt.enter()
	defer rt.leave()
	if err := rt.installPrimitives(); err != nil {
		return nil, err
	}
	if err := rt.installPrelude(); err != nil {
		return nil, err
	}
	ctx.AttachScript(rt)
	log.Debugf("script runtime attached to context %s", ctx.SessionID())
	return rt, nil
}

// Context returns the context the runtime drives.
func (rt *Runtime) Context() *core.Context {
	return rt.ctx
}

func (rt *Runtime) enter() {
	if rt.depth == 0 {
		evalMu.Lock()
		rt.lastErr = nil
	}
	rt.depth++
}

func (rt *Runtime) leave() {
	rt.depth--
	if rt.depth == 0 {
		evalMu.Unlock()
	}
}

// Eval evaluates every form in source and returns the value of the last
// one converted to Go. Errors raised by the core inside a primitive are
// returned wrapped, so callers can match them with errors.Is.
func (rt *Runtime) Eval(source string) (any, error) {
	if rt.closed {
		return nil, errors.New("script.Eval", errors.KindScript, "runtime closed")
	}
	rt.enter()
	defer rt.leave()
	result, err := golisp.ParseAndEvalAllInEnvironment(source, rt.env)
	if err != nil {
		return nil, rt.wrapErr("script.Eval", err)
	}
	return toGo(result), nil
}

// LoadFile evaluates the script at path.
func (rt *Runtime) LoadFile(path string) (any, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.Error{Op: "script.LoadFile", Kind: errors.KindScript, Err: err}
	}
	v, err := rt.Eval(string(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Lookup returns the Go value of a symbol bound in the runtime
// environment.
func (rt *Runtime) Lookup(name string) (any, bool) {
	rt.enter()
	defer rt.leave()
	d := rt.env.ValueOf(golisp.Intern(name))
	if d == nil {
		return nil, false
	}
	return toGo(d), true
}

// Close detaches the runtime. Further evaluation fails.
func (rt *Runtime) Close() error {
	rt.closed = true
	return nil
}

// wrapErr prefers the core error recorded by a failing primitive over the
// interpreter's message.
func (rt *Runtime) wrapErr(op string, err error) error {
	if rt.lastErr != nil {
		cause := rt.lastErr
		return fmt.Errorf("%s: %w", op, cause)
	}
	return &errors.Error{Op: op, Kind: errors.KindScript, Err: err}
}

// apply calls a script procedure with Go arguments.
func (rt *Runtime) apply(proc *golisp.Data, args []any) (*golisp.Data, error) {
	rt.enter()
	defer rt.leave()
	list := make([]*golisp.Data, len(args))
	for i, a := range args {
		list[i] = rt.fromGo(a)
	}
	out, err := golisp.ApplyWithoutEval(proc, golisp.ArrayToList(list), rt.env)
	if err != nil {
		return nil, rt.wrapErr("script.Apply", err)
	}
	return out, nil
}

// Call invokes the procedure bound to name with Go arguments.
func (rt *Runtime) Call(name string, args ...any) (any, error) {
	proc := rt.env.ValueOf(golisp.Intern(name))
	if !golisp.FunctionOrPrimitiveP(proc) {
		return nil, errors.New("script.Call", errors.KindScript, "%s is not a procedure", name)
	}
	out, err := rt.apply(proc, args)
	if err != nil {
		return nil, err
	}
	return toGo(out), nil
}

type arity struct {
	min, max int // max < 0 means variadic
}

func (a arity) check(name string, n int) error {
	if n < a.min || (a.max >= 0 && n > a.max) {
		switch {
		case a.max < 0:
			return fmt.Errorf("%s expects at least %d arguments, got %d", name, a.min, n)
		case a.min == a.max:
			return fmt.Errorf("%s expects %d arguments, got %d", name, a.min, n)
		default:
			return fmt.Errorf("%s expects %d to %d arguments, got %d", name, a.min, a.max, n)
		}
	}
	return nil
}

type primitiveFunc func(args []*golisp.Data) (*golisp.Data, error)

// procedure wraps fn as a golisp primitive closed over rt. Structured
// errors returned by fn are recorded for wrapErr.
func (rt *Runtime) procedure(name string, ar arity, fn primitiveFunc) *golisp.Data {
	pf := &golisp.PrimitiveFunction{
		Name:            name,
		Special:         false,
		ArgRestrictions: []golisp.ArgRestriction{{Type: golisp.ARGS_ANY}},
		IsRestricted:    false,
		Body: func(args *golisp.Data, _ *golisp.SymbolTableFrame) (*golisp.Data, error) {
			argv := golisp.ToArray(args)
			if err := ar.check(name, len(argv)); err != nil {
				return nil, err
			}
			out, err := fn(argv)
			if err != nil {
				if rt.lastErr == nil && errors.KindOf(err) != errors.KindUnknown {
					rt.lastErr = err
				}
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if out == nil {
				out = golisp.EmptyCons()
			}
			return out, nil
		},
	}
	return golisp.PrimitiveWithNameAndFunc(name, pf)
}

func (rt *Runtime) define(name string, ar arity, fn primitiveFunc) error {
	_, err := rt.env.BindLocallyTo(golisp.Intern(name), rt.procedure(name, ar, fn))
	return err
}

func (rt *Runtime) alias(name, target string) error {
	_, err := rt.env.BindLocallyTo(golisp.Intern(name), rt.env.ValueOf(golisp.Intern(target)))
	return err
}
