package snapshot

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-guihck/guihck/pkg/core"
	"github.com/go-guihck/guihck/pkg/elements"
)

// panelTree builds a panel holding a text label whose color aliases the
// panel and whose inset binds to the panel width.
func panelTree(t *testing.T) (*core.Context, core.ElementID, core.ElementID) {
	t.Helper()
	ctx := core.NewContext()
	t.Cleanup(func() { _ = ctx.Close() })
	require.NoError(t, elements.RegisterAll(ctx))

	panel, err := ctx.CreateElementByName(elements.TypeItem, ctx.Root())
	require.NoError(t, err)
	require.NoError(t, ctx.Set(panel, "id", "panel"))
	require.NoError(t, ctx.Set(panel, "width", 120))
	require.NoError(t, ctx.Set(panel, "color", "teal"))
	require.NoError(t, ctx.SetProperty(panel, "on-click", core.Method{
		Fn: func(*core.Context, core.ElementID, []any) (any, error) { return nil, nil },
	}))

	label, err := ctx.CreateElementByName(elements.TypeText, panel)
	require.NoError(t, err)
	require.NoError(t, ctx.Set(label, "text", "hi"))
	require.NoError(t, ctx.SetProperty(label, "color", core.Alias{Target: core.Ref{Element: panel, Name: "color"}}))
	require.NoError(t, ctx.SetProperty(label, "inset", core.NewBinding(nil, core.Ref{Element: panel, Name: "width"})))

	ctx.Frame()
	return ctx, panel, label
}

func TestCapture_Golden(t *testing.T) {
	ctx, _, _ := panelTree(t)
	out, err := Capture(ctx, DefaultOptions).YAML()
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "panel", out)
}

func TestCapture_Shape(t *testing.T) {
	ctx, panel, label := panelTree(t)
	tree := Capture(ctx, Options{})

	assert.Empty(t, tree.Session)
	assert.Equal(t, []string{"item", "text", "timer"}, tree.Types)

	n := tree.Find(uint64(label))
	require.NotNil(t, n)
	assert.Equal(t, "text", n.Type)

	inset, ok := n.Prop("inset")
	require.True(t, ok)
	assert.Equal(t, KindBinding, inset.Kind)
	assert.Nil(t, inset.Value)
	assert.Equal(t, []string{core.Ref{Element: panel, Name: "width"}.String()}, inset.Deps)

	color, ok := n.Prop("color")
	require.True(t, ok)
	assert.Equal(t, KindAlias, color.Kind)
	assert.Equal(t, "2.color", color.Target)

	// Literals are always recorded.
	text, _ := n.Prop("text")
	assert.Equal(t, "hi", text.Value)
}

func TestCapture_SessionAndErrors(t *testing.T) {
	ctx, panel, label := panelTree(t)
	require.NoError(t, ctx.SetProperty(label, "broken", core.NewBinding(func([]any) (any, error) {
		return nil, assert.AnError
	}, core.Ref{Element: panel, Name: "width"})))

	tree := Capture(ctx, Options{Session: true, Values: true})
	assert.Equal(t, ctx.SessionID().String(), tree.Session)

	p, ok := tree.Find(uint64(label)).Prop("broken")
	require.True(t, ok)
	assert.Contains(t, p.Error, assert.AnError.Error())
	assert.Nil(t, tree.Find(999))
}

func TestCBOR_Canonical(t *testing.T) {
	ctx, _, label := panelTree(t)
	a, err := Capture(ctx, DefaultOptions).CBOR()
	require.NoError(t, err)
	b, err := Capture(ctx, DefaultOptions).CBOR()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	tree, err := ParseCBOR(a)
	require.NoError(t, err)
	n := tree.Find(uint64(label))
	require.NotNil(t, n)
	w, _ := n.Prop("width")
	assert.EqualValues(t, 14, w.Value)
}

func TestYAML_Parse(t *testing.T) {
	ctx, panel, _ := panelTree(t)
	out, err := Capture(ctx, DefaultOptions).YAML()
	require.NoError(t, err)

	tree, err := ParseYAML(out)
	require.NoError(t, err)
	n := tree.Find(uint64(panel))
	require.NotNil(t, n)
	id, _ := n.Prop("id")
	assert.Equal(t, "panel", id.Value)
	click, _ := n.Prop("on-click")
	assert.Equal(t, KindMethod, click.Kind)
}

func TestCapture_Empty(t *testing.T) {
	ctx := core.NewContext()
	tree := Capture(ctx, DefaultOptions)
	require.NotNil(t, tree.Root)
	assert.Equal(t, uint64(ctx.Root()), tree.Root.ID)
	assert.Empty(t, tree.Root.Children)
	assert.Empty(t, tree.Types)
}
