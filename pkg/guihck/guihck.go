// Package guihck wires a core.Context, its script runtime, and the
// built-in element types into one App.
package guihck

import (
	"github.com/tliron/commonlog"

	"github.com/go-guihck/guihck/pkg/core"
	"github.com/go-guihck/guihck/pkg/elements"
	"github.com/go-guihck/guihck/pkg/errors"
	"github.com/go-guihck/guihck/pkg/script"
	"github.com/go-guihck/guihck/pkg/snapshot"
)

// Version is the module release.
const Version = "0.4.0"

// APIVersion is the script API version scripts check with guihck-require.
const APIVersion = script.APIVersion

// Options configures New. The zero value is usable.
type Options struct {
	// MaxUpdatePasses caps update passes per frame; 0 keeps the default.
	MaxUpdatePasses int
	// Logger overrides the core logger.
	Logger commonlog.Logger
	// OnNeedsFrame is called when the context starts needing a frame.
	OnNeedsFrame func()
	// NoBuiltins skips registering item, timer, and text.
	NoBuiltins bool
	// Prelude lists script files evaluated, in order, once the runtime is
	// ready.
	Prelude []string
	// RequireAPI fails New unless the script API satisfies this version.
	RequireAPI string
}

// App is a ready-to-use context with a script runtime attached.
type App struct {
	Context *core.Context
	Script  *script.Runtime
}

// New builds an App. On error nothing is left running.
func New(opts Options) (*App, error) {
	var copts []core.Option
	if opts.MaxUpdatePasses > 0 {
		copts = append(copts, core.WithMaxUpdatePasses(opts.MaxUpdatePasses))
	}
	if opts.Logger != nil {
		copts = append(copts, core.WithLogger(opts.Logger))
	}
	if opts.OnNeedsFrame != nil {
		copts = append(copts, core.WithOnNeedsFrame(opts.OnNeedsFrame))
	}
	ctx := core.NewContext(copts...)

	app, err := setup(ctx, opts)
	if err != nil {
		_ = ctx.Close()
		return nil, err
	}
	return app, nil
}

func setup(ctx *core.Context, opts Options) (*App, error) {
	if !opts.NoBuiltins {
		if err := elements.RegisterAll(ctx); err != nil {
			return nil, err
		}
	}
	rt, err := script.New(ctx)
	if err != nil {
		return nil, err
	}
	app := &App{Context: ctx, Script: rt}
	if opts.RequireAPI != "" {
		if err := app.Require(opts.RequireAPI); err != nil {
			return nil, err
		}
	}
	for _, path := range opts.Prelude {
		if _, err := app.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Require fails unless the script API satisfies version.
func (a *App) Require(version string) error {
	_, err := a.Script.Call("guihck-require", version)
	return err
}

// Run evaluates source against the tree.
func (a *App) Run(source string) (any, error) {
	return a.Context.RunScript(source)
}

// LoadFile evaluates a script file. The construction stack is restored
// when the file fails.
func (a *App) LoadFile(path string) (any, error) {
	restore := a.Context.Stack().Guard()
	v, err := a.Script.LoadFile(path)
	if err != nil {
		restore()
		return nil, err
	}
	return v, nil
}

// Frame runs one update and render cycle.
func (a *App) Frame() core.UpdateStats {
	return a.Context.Frame()
}

// RunFrames runs up to n frames, stopping early once no frame is needed.
// It returns the number of frames run.
func (a *App) RunFrames(n int) int {
	ran := 0
	for ran < n {
		a.Context.Frame()
		ran++
		if !a.Context.NeedsFrame() {
			break
		}
	}
	return ran
}

// Snapshot captures the current tree.
func (a *App) Snapshot(opts snapshot.Options) *snapshot.Tree {
	return snapshot.Capture(a.Context, opts)
}

// Close destroys the tree and the script runtime.
func (a *App) Close() error {
	if a == nil || a.Context == nil {
		return errors.New("guihck.Close", errors.KindInvalidElement, "app is not initialized")
	}
	return a.Context.Close()
}
