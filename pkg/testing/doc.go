// Package testing provides a test harness for guihck trees.
//
// # Quick Start
//
// Create a tester, build a tree from a script, and make assertions:
//
//	func TestPanel(t *testing.T) {
//	    tester := guihcktest.NewTesterWithT(t)
//	    tester.Run(`(create-elements! (element 'text (id "title") (prop 'text "Hi")))`)
//	    tester.Pump()
//
//	    title := tester.Find(guihcktest.ByID("title")).First()
//	    if w := tester.Property(title, "width"); w != int64(14) {
//	        t.Errorf("expected width 14, got %v", w)
//	    }
//	}
//
// # Timers
//
// The tester installs a FakeClock as the timer clock:
//
//	tester.Advance(500 * time.Millisecond)
//
// # Lifecycle Recording
//
// Recorder is an element behavior that logs every callback, for asserting
// lifecycle order:
//
//	rec := guihcktest.NewRecorder()
//	rec.Register(tester.Context(), "recorded")
//
// # Golden Snapshots
//
// MatchesGolden compares the tree against testdata/golden/<name>.golden.
// Update golden files with:
//
//	go test ./... -update
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import guihcktest "github.com/go-guihck/guihck/pkg/testing"
package testing
