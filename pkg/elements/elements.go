package elements

import (
	"github.com/tliron/commonlog"

	"github.com/go-guihck/guihck/pkg/core"
	"github.com/go-guihck/guihck/pkg/errors"
)

var log = commonlog.GetLogger("guihck.elements")

// Built-in type names.
const (
	TypeItem  = "item"
	TypeTimer = "timer"
	TypeText  = "text"
)

// RegisterAll registers every built-in element type on ctx. Types that
// are already registered under the same name are left alone.
func RegisterAll(ctx *core.Context) error {
	for _, register := range []func(*core.Context) (core.TypeID, error){
		RegisterItem,
		RegisterTimer,
		RegisterText,
	} {
		if _, err := register(ctx); err != nil && errors.KindOf(err) != errors.KindDuplicateRegistration {
			return err
		}
	}
	return nil
}

// RegisterItem registers the plain container type. Items carry properties
// and children and do nothing on update or render.
func RegisterItem(ctx *core.Context) (core.TypeID, error) {
	return ctx.Register(TypeItem, nil, 0)
}

// number reads a numeric property, falling back to def when the property
// is unset, unreadable, or not a number.
func number(c *core.Context, id core.ElementID, name string, def float64) float64 {
	v, err := c.Property(id, name)
	if err != nil {
		log.Warningf("element %d: %s: %s", id, name, err)
		return def
	}
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return def
}

// truthy follows script truthiness: only false, zero, and the empty list
// or unset value count as false.
func truthy(c *core.Context, id core.ElementID, name string) bool {
	v, err := c.Property(id, name)
	if err != nil {
		log.Warningf("element %d: %s: %s", id, name, err)
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case core.UnsetValue, nil:
		return false
	}
	return true
}

func stringProp(c *core.Context, id core.ElementID, name string) string {
	v, err := c.Property(id, name)
	if err != nil {
		log.Warningf("element %d: %s: %s", id, name, err)
		return ""
	}
	s, _ := v.(string)
	return s
}

// setDefault writes v unless the property already holds a value.
func setDefault(c *core.Context, id core.ElementID, name string, v any) {
	if _, ok := c.Raw(id, name); ok {
		return
	}
	if err := c.Set(id, name, v); err != nil {
		log.Errorf("element %d: default %s: %s", id, name, err)
	}
}

// setIfChanged writes v when it differs from the current value and
// reports whether it wrote.
func setIfChanged(c *core.Context, id core.ElementID, name string, v any) bool {
	cur, err := c.Property(id, name)
	if err == nil && core.LiteralEqual(cur, v) {
		return false
	}
	if err := c.Set(id, name, v); err != nil {
		errors.Report(&errors.Error{
			Op:       "elements.set",
			Kind:     errors.KindOf(err),
			Element:  uint64(id),
			Property: name,
			Err:      err,
		})
		return false
	}
	return true
}
