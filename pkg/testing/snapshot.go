package testing

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/go-guihck/guihck/pkg/snapshot"
)

// CaptureSnapshot captures the current tree with resolved values and no
// session id.
func (t *Tester) CaptureSnapshot() *snapshot.Tree {
	return snapshot.Capture(t.app.Context, snapshot.DefaultOptions)
}

// MatchesGolden compares the YAML form of the current tree against
// testdata/golden/<name>.golden. Run the test with -update to rewrite the
// file.
func (t *Tester) MatchesGolden(tb *testing.T, name string) {
	tb.Helper()
	out, err := t.CaptureSnapshot().YAML()
	if err != nil {
		tb.Fatalf("snapshot: %v", err)
	}
	g := goldie.New(tb,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(tb, name, out)
}
