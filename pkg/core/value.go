package core

import (
	"fmt"
	"math"

	"golang.org/x/text/unicode/norm"
)

// Value is a stored property variant: Literal, Binding, Alias, or Method.
// The set of variants is closed; Context.Property resolves them with a
// single type switch.
type Value interface {
	isValue()
}

// Literal holds a plain value. V is one of int64, float64, string, bool,
// ElementID, or []any of those.
type Literal struct {
	V any
}

// Ref addresses one property of one element.
type Ref struct {
	Element ElementID
	Name    string
}

func (r Ref) String() string {
	return fmt.Sprintf("%d.%s", r.Element, r.Name)
}

// ComputeFunc derives a binding's value from the resolved values of its
// dependencies, in dependency order.
type ComputeFunc func(args []any) (any, error)

// Binding is a property computed from other properties on every read.
type Binding struct {
	Deps    []Ref
	Compute ComputeFunc
}

// Alias delegates reads and literal writes to another element's property.
type Alias struct {
	Target Ref
}

// MethodFunc is the callable behind a Method property. self is the element
// the method was declared on; it is also the current construction stack
// top while the method runs.
type MethodFunc func(c *Context, self ElementID, args []any) (any, error)

// Method is a callable bound to the element that declared it.
type Method struct {
	Element ElementID
	Fn      MethodFunc
}

func (Literal) isValue() {}
func (Binding) isValue() {}
func (Alias) isValue()   {}
func (Method) isValue()  {}

// UnsetValue is the type of Unset.
type UnsetValue struct{}

func (UnsetValue) String() string { return "<unset>" }

// Unset is returned when reading a property that holds no value.
var Unset = UnsetValue{}

// IsUnset reports whether v is the Unset sentinel.
func IsUnset(v any) bool {
	_, ok := v.(UnsetValue)
	return ok
}

// NewBinding builds a binding over deps. A nil compute selects Identity.
func NewBinding(compute ComputeFunc, deps ...Ref) Binding {
	return Binding{Deps: deps, Compute: compute}
}

// Identity returns the single dependency value, or all of them as a list.
func Identity(args []any) (any, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	out := make([]any, len(args))
	copy(out, args)
	return out, nil
}

// NormalizeName returns the canonical (NFC) form of a property name.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// NormalizeLiteral converts Go scalar types into the literal set used by
// the property engine. Unsigned values beyond int64 become float64.
func NormalizeLiteral(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return unsigned(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return unsigned(x)
	case float32:
		return float64(x)
	case string:
		return norm.NFC.String(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = NormalizeLiteral(e)
		}
		return out
	default:
		return v
	}
}

// LiteralEqual compares two literals. Numbers compare by value regardless
// of integer or float representation.
func LiteralEqual(a, b any) bool {
	a, b = NormalizeLiteral(a), NormalizeLiteral(b)
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		return ok && fa == fb
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !LiteralEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case UnsetValue:
		return IsUnset(b)
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case ElementID:
		return float64(x), true
	}
	return 0, false
}

func normalizeValue(v Value, self ElementID) Value {
	switch x := v.(type) {
	case Literal:
		return Literal{V: NormalizeLiteral(x.V)}
	case Binding:
		deps := make([]Ref, len(x.Deps))
		for i, d := range x.Deps {
			deps[i] = Ref{Element: d.Element, Name: NormalizeName(d.Name)}
		}
		if x.Compute == nil {
			x.Compute = Identity
		}
		return Binding{Deps: deps, Compute: x.Compute}
	case Alias:
		return Alias{Target: Ref{Element: x.Target.Element, Name: NormalizeName(x.Target.Name)}}
	case Method:
		if x.Element == 0 {
			x.Element = self
		}
		return x
	}
	return v
}

func unsigned(x uint64) any {
	if x > math.MaxInt64 {
		return float64(x)
	}
	return int64(x)
}
