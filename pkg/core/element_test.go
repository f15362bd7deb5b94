package core

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-guihck/guihck/pkg/errors"
)

// callLog records lifecycle callbacks as "event:id" strings.
type callLog struct {
	calls []string
}

func (l *callLog) add(event string, id ElementID) {
	l.calls = append(l.calls, fmt.Sprintf("%s:%d", event, id))
}

func (l *callLog) funcs() Funcs {
	return Funcs{
		OnInit:    func(c *Context, id ElementID, data any) { l.add("init", id) },
		OnDestroy: func(c *Context, id ElementID, data any) { l.add("destroy", id) },
		OnUpdate: func(c *Context, id ElementID, data any) bool {
			l.add("update", id)
			return false
		},
		OnRender: func(c *Context, id ElementID, data any) { l.add("render", id) },
	}
}

func mustRegister(t *testing.T, c *Context, name string, b Behavior) TypeID {
	t.Helper()
	typ, err := c.Register(name, b, 0)
	require.NoError(t, err)
	return typ
}

func mustCreate(t *testing.T, c *Context, typ TypeID, parent ElementID) ElementID {
	t.Helper()
	id, err := c.CreateElement(typ, parent)
	require.NoError(t, err)
	return id
}

func TestLifecycle_CallOrder(t *testing.T) {
	c := NewContext()
	log := &callLog{}
	foo := mustRegister(t, c, "foo", log.funcs())

	id := mustCreate(t, c, foo, c.Root())
	stats := c.Update()
	c.Render()
	require.NoError(t, c.DestroyElement(id))

	assert.Equal(t, []string{"init:2", "update:2", "render:2", "destroy:2"}, log.calls)
	assert.Equal(t, 1, stats.Passes)
	assert.True(t, stats.Settled)
}

func TestCreateElement_UnknownType(t *testing.T) {
	c := NewContext()
	_, err := c.CreateElement(TypeID(7), c.Root())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownType))

	_, err = c.CreateElementByName("missing", c.Root())
	assert.ErrorIs(t, err, errors.ErrUnknownType)
}

func TestCreateElement_InvalidParent(t *testing.T) {
	c := NewContext()
	foo := mustRegister(t, c, "foo", nil)
	_, err := c.CreateElement(foo, ElementID(99))
	assert.ErrorIs(t, err, errors.ErrInvalidElement)
	n, _ := c.ChildCount(c.Root())
	assert.Equal(t, 0, n)
}

func TestCreateElement_IDsMonotonic(t *testing.T) {
	c := NewContext()
	foo := mustRegister(t, c, "foo", nil)

	a := mustCreate(t, c, foo, c.Root())
	b := mustCreate(t, c, foo, c.Root())
	d := mustCreate(t, c, foo, c.Root())
	assert.Equal(t, []ElementID{2, 3, 4}, []ElementID{a, b, d})

	require.NoError(t, c.DestroyElement(b))
	next := mustCreate(t, c, foo, c.Root())
	assert.Equal(t, ElementID(5), next)
	assert.False(t, c.Exists(b))
	assert.Equal(t, []ElementID{a, d, next}, c.Children(c.Root()))
}

func TestCreateElement_InitPanic(t *testing.T) {
	c := NewContext()
	bad := mustRegister(t, c, "bad", Funcs{
		OnInit: func(c *Context, id ElementID, data any) { panic("no") },
	})

	id, err := c.CreateElement(bad, c.Root())
	require.Error(t, err)
	assert.Zero(t, id)
	var pe *errors.PanicError
	require.True(t, stderrors.As(err, &pe))
	assert.Equal(t, "no", pe.Value)
	assert.Empty(t, c.Children(c.Root()))
	assert.Equal(t, 1, c.Len())
}

func TestCreateElement_InitPanicTearsDownChildren(t *testing.T) {
	c := NewContext()
	log := &callLog{}
	leaf := mustRegister(t, c, "leaf", log.funcs())
	var child ElementID
	bad := mustRegister(t, c, "bad", Funcs{
		OnInit: func(c *Context, id ElementID, data any) {
			child = mustCreate(t, c, leaf, id)
			panic("no")
		},
	})

	_, err := c.CreateElement(bad, c.Root())
	require.Error(t, err)
	assert.NotZero(t, child)
	assert.False(t, c.Exists(child))
	assert.Equal(t, 1, c.Len())
	assert.Empty(t, c.Children(c.Root()))
	assert.Equal(t, []string{fmt.Sprintf("init:%d", child), fmt.Sprintf("destroy:%d", child)}, log.calls)

	require.NoError(t, c.Close())
	assert.Len(t, log.calls, 2)
}

type counterData struct {
	n int
}

type allocBehavior struct{ Funcs }

func (allocBehavior) NewData() any { return &counterData{n: 3} }

func TestCreateElement_InstanceData(t *testing.T) {
	c := NewContext()

	sized, err := c.Register("sized", nil, 8)
	require.NoError(t, err)
	id := mustCreate(t, c, sized, c.Root())
	assert.Equal(t, make([]byte, 8), c.Data(id))

	empty := mustRegister(t, c, "empty", nil)
	id = mustCreate(t, c, empty, c.Root())
	assert.Nil(t, c.Data(id))

	typed := mustRegister(t, c, "typed", allocBehavior{})
	var seen any
	typed2, err := c.RegisterType(ElementType{
		Name: "typed-init",
		Behavior: allocBehavior{Funcs{OnInit: func(c *Context, id ElementID, data any) {
			seen = data
		}}},
	})
	require.NoError(t, err)
	id = mustCreate(t, c, typed, c.Root())
	assert.Equal(t, &counterData{n: 3}, c.Data(id))
	mustCreate(t, c, typed2, c.Root())
	assert.IsType(t, &counterData{}, seen)
}

func TestDestroyElement_SubtreeOrder(t *testing.T) {
	c := NewContext()
	var order []ElementID
	var parent ElementID
	var sawParentLinked bool
	node := mustRegister(t, c, "node", Funcs{
		OnDestroy: func(c *Context, id ElementID, data any) {
			order = append(order, id)
			for _, child := range c.Children(c.Root()) {
				if child == parent {
					sawParentLinked = true
				}
			}
			walked := 0
			c.Walk(func(ElementID, int) bool { walked++; return true })
			assert.Equal(t, 2, walked, "only root and sibling remain in traversal")
		},
	})

	parent = mustCreate(t, c, node, c.Root())
	a := mustCreate(t, c, node, parent)
	a1 := mustCreate(t, c, node, a)
	b := mustCreate(t, c, node, parent)
	sibling := mustCreate(t, c, node, c.Root())

	require.NoError(t, c.DestroyElement(parent))

	assert.Equal(t, []ElementID{a1, a, b, parent}, order)
	assert.False(t, sawParentLinked)
	for _, id := range []ElementID{parent, a, a1, b} {
		assert.False(t, c.Exists(id))
	}
	assert.Equal(t, []ElementID{sibling}, c.Children(c.Root()))
}

func TestDestroyElement_Invalid(t *testing.T) {
	c := NewContext()
	foo := mustRegister(t, c, "foo", nil)
	id := mustCreate(t, c, foo, c.Root())

	assert.ErrorIs(t, c.DestroyElement(c.Root()), errors.ErrInvalidElement)
	require.NoError(t, c.DestroyElement(id))
	assert.ErrorIs(t, c.DestroyElement(id), errors.ErrInvalidElement)
	assert.ErrorIs(t, c.DestroyElement(ElementID(1000)), errors.ErrInvalidElement)
}

func TestDestroyElement_ExactlyOnce(t *testing.T) {
	c := NewContext()
	destroyed := map[ElementID]int{}
	node := mustRegister(t, c, "node", Funcs{
		OnDestroy: func(c *Context, id ElementID, data any) {
			destroyed[id]++
			// Destroying from inside a destroy callback must not repeat work.
			_ = c.DestroyElement(id)
		},
	})
	p := mustCreate(t, c, node, c.Root())
	child := mustCreate(t, c, node, p)

	require.NoError(t, c.DestroyElement(p))
	assert.Equal(t, map[ElementID]int{p: 1, child: 1}, destroyed)
}

func TestDestroyElement_DropsListeners(t *testing.T) {
	c := NewContext()
	foo := mustRegister(t, c, "foo", nil)
	id := mustCreate(t, c, foo, c.Root())
	lid, err := c.AddListener(id, "x", func(*Context, ElementID, string, any) error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, c.ListenerCount(id, "x"))

	require.NoError(t, c.DestroyElement(id))
	assert.Equal(t, 0, c.ListenerCount(id, "x"))
	assert.False(t, c.RemoveListener(lid))
}

func TestReparent_MovesElement(t *testing.T) {
	c := NewContext()
	foo := mustRegister(t, c, "foo", nil)
	p1 := mustCreate(t, c, foo, c.Root())
	p2 := mustCreate(t, c, foo, c.Root())
	x := mustCreate(t, c, foo, p1)

	require.NoError(t, c.Reparent(x, p2))

	assert.NotContains(t, c.Children(p1), x)
	assert.Equal(t, []ElementID{x}, c.Children(p2))

	s := c.Stack()
	require.NoError(t, s.PushElement(x))
	require.NoError(t, s.PushParent())
	cur, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, p2, cur)
}

func TestReparent_Cycle(t *testing.T) {
	c := NewContext()
	foo := mustRegister(t, c, "foo", nil)
	p := mustCreate(t, c, foo, c.Root())
	child := mustCreate(t, c, foo, p)
	grandchild := mustCreate(t, c, foo, child)

	assert.ErrorIs(t, c.Reparent(p, p), errors.ErrReparentCycle)
	assert.ErrorIs(t, c.Reparent(p, grandchild), errors.ErrReparentCycle)
	assert.ErrorIs(t, c.Reparent(c.Root(), p), errors.ErrInvalidElement)
	assert.ErrorIs(t, c.Reparent(p, ElementID(404)), errors.ErrInvalidElement)

	// Tree unchanged.
	assert.Equal(t, []ElementID{p}, c.Children(c.Root()))
	assert.Equal(t, []ElementID{child}, c.Children(p))
	assert.Equal(t, []ElementID{grandchild}, c.Children(child))
}

func TestReparent_StaysAcyclic(t *testing.T) {
	c := NewContext()
	foo := mustRegister(t, c, "foo", nil)
	ids := []ElementID{c.Root()}
	for i := 0; i < 12; i++ {
		ids = append(ids, mustCreate(t, c, foo, ids[i/2]))
	}
	for i := 1; i < len(ids); i++ {
		for j := 0; j < len(ids); j++ {
			_ = c.Reparent(ids[i], ids[j])
		}
	}
	// Every element reaches the root by parent links within Len steps.
	for _, id := range ids {
		steps := 0
		for cur := id; cur != 0; steps++ {
			require.Less(t, steps, c.Len())
			cur, _ = c.Parent(cur)
		}
	}
}

func TestRegister_Duplicate(t *testing.T) {
	c := NewContext()
	_, err := c.Register("foo", nil, 0)
	require.NoError(t, err)
	_, err = c.Register("foo", nil, 0)
	assert.ErrorIs(t, err, errors.ErrDuplicateRegistration)
}

func TestRegister_Lookup(t *testing.T) {
	c := NewContext()
	ext := struct{ tag string }{"slot"}
	bar, err := c.RegisterType(ElementType{Name: "bar", Extensions: [2]any{ext, nil}})
	require.NoError(t, err)
	foo := mustRegister(t, c, "foo", nil)

	got, ok := c.LookupType("bar")
	require.True(t, ok)
	assert.Equal(t, bar, got)
	assert.Equal(t, "foo", c.TypeName(foo))
	assert.Equal(t, "", c.TypeName(TypeID(42)))
	assert.Equal(t, []string{"bar", "foo"}, c.Types())

	info, ok := c.TypeInfo(bar)
	require.True(t, ok)
	assert.Equal(t, ext, info.Extensions[0])

	id := mustCreate(t, c, bar, c.Root())
	typ, ok := c.Type(id)
	require.True(t, ok)
	assert.Equal(t, bar, typ)
	_, ok = c.Type(c.Root())
	assert.False(t, ok)
}

func TestWalk_PreOrder(t *testing.T) {
	c := NewContext()
	foo := mustRegister(t, c, "foo", nil)
	a := mustCreate(t, c, foo, c.Root())
	a1 := mustCreate(t, c, foo, a)
	b := mustCreate(t, c, foo, c.Root())

	var got []ElementID
	var depths []int
	c.Walk(func(id ElementID, depth int) bool {
		got = append(got, id)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []ElementID{c.Root(), a, a1, b}, got)
	assert.Equal(t, []int{0, 1, 2, 1}, depths)

	got = nil
	c.Walk(func(id ElementID, depth int) bool {
		got = append(got, id)
		return id != a
	})
	assert.Equal(t, []ElementID{c.Root(), a, b}, got)
}

func TestClose_DestroysTree(t *testing.T) {
	c := NewContext()
	log := &callLog{}
	foo := mustRegister(t, c, "foo", log.funcs())
	a := mustCreate(t, c, foo, c.Root())
	mustCreate(t, c, foo, a)

	require.NoError(t, c.Close())
	assert.Equal(t, []string{"init:2", "init:3", "destroy:3", "destroy:2"}, log.calls)
	assert.Equal(t, 1, c.Len())
	require.NoError(t, c.Close())
}

func TestSessionID_Unique(t *testing.T) {
	assert.NotEqual(t, NewContext().SessionID(), NewContext().SessionID())
}
