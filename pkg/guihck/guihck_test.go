package guihck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-guihck/guihck/pkg/errors"
	"github.com/go-guihck/guihck/pkg/snapshot"
)

func newApp(t *testing.T, opts Options) *App {
	t.Helper()
	app, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNew_Builtins(t *testing.T) {
	app := newApp(t, Options{})
	assert.Equal(t, []string{"item", "text", "timer"}, app.Context.Types())
	assert.Same(t, app.Context, app.Script.Context())
	assert.Equal(t, app.Script, app.Context.Script())

	bare := newApp(t, Options{NoBuiltins: true})
	assert.Empty(t, bare.Context.Types())
}

func TestNew_Options(t *testing.T) {
	frames := 0
	app := newApp(t, Options{MaxUpdatePasses: 2, OnNeedsFrame: func() { frames++ }})
	assert.Equal(t, 2, app.Context.MaxUpdatePasses())

	app.Context.RequestFrame()
	assert.Equal(t, 1, frames)
}

func TestNew_RequireAPI(t *testing.T) {
	newApp(t, Options{RequireAPI: "v1.1.0"})

	_, err := New(Options{RequireAPI: "v2.0.0"})
	assert.ErrorIs(t, err, errors.ErrScript)
}

func TestNew_Prelude(t *testing.T) {
	app := newApp(t, Options{Prelude: []string{"testdata/prelude.scm"}})
	ids, err := app.Run(`(create-elements! (panel (id "main")))`)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	main := app.Context.Children(app.Context.Root())[0]
	w, err := app.Context.Property(main, "width")
	require.NoError(t, err)
	assert.Equal(t, int64(200), w)

	_, err = New(Options{Prelude: []string{"testdata/missing.scm"}})
	assert.ErrorIs(t, err, errors.ErrScript)
}

func TestRunFrames(t *testing.T) {
	app := newApp(t, Options{})
	_, err := app.Run(`
		(create-elements!
			(element 'text (id "label") (prop 'text "abc"))
			(element 'item (id "box")
				(prop 'width (bound '("label" width) (lambda (w) (+ w 10))))))`)
	require.NoError(t, err)

	assert.Equal(t, 1, app.RunFrames(5))
	tree := app.Snapshot(snapshot.DefaultOptions)
	box := tree.Root.Children[1]
	w, ok := box.Prop("width")
	require.True(t, ok)
	assert.Equal(t, int64(31), w.Value)
}

func TestClose(t *testing.T) {
	app, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, app.Close())
	_, err = app.Run(`(+ 1 2)`)
	assert.ErrorIs(t, err, errors.ErrScript)

	var nilApp *App
	assert.Error(t, nilApp.Close())
}
