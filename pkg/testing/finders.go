package testing

import (
	"fmt"

	"github.com/go-guihck/guihck/pkg/core"
)

// Finder locates elements in the tree.
type Finder interface {
	// Evaluate returns all matching elements under root (depth-first pre-order).
	Evaluate(ctx *core.Context, root core.ElementID) []core.ElementID
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	ids    []core.ElementID
	finder Finder
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() core.ElementID {
	if len(r.ids) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.describe()))
	}
	return r.ids[0]
}

// FirstOrZero returns the first match, or 0 if none.
func (r FinderResult) FirstOrZero() core.ElementID {
	if len(r.ids) == 0 {
		return 0
	}
	return r.ids[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) core.ElementID {
	if index < 0 || index >= len(r.ids) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.ids), r.describe()))
	}
	return r.ids[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []core.ElementID {
	return r.ids
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.ids)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.ids) > 0
}

// predicateFinder matches elements satisfying a predicate.
type predicateFinder struct {
	fn   func(*core.Context, core.ElementID) bool
	desc string
}

func (f *predicateFinder) Evaluate(ctx *core.Context, root core.ElementID) []core.ElementID {
	return collectMatches(ctx, root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByType matches elements of the named type.
func ByType(name string) Finder {
	return &predicateFinder{
		desc: fmt.Sprintf("ByType(%s)", name),
		fn: func(ctx *core.Context, id core.ElementID) bool {
			t, ok := ctx.Type(id)
			return ok && ctx.TypeName(t) == name
		},
	}
}

// ByID matches elements whose id property equals tag.
func ByID(tag any) Finder {
	return ByProperty("id", tag)
}

// ByProperty matches elements whose resolved property equals value.
func ByProperty(name string, value any) Finder {
	return &predicateFinder{
		desc: fmt.Sprintf("ByProperty(%s=%v)", name, value),
		fn: func(ctx *core.Context, id core.ElementID) bool {
			v, err := ctx.Property(id, name)
			return err == nil && core.LiteralEqual(v, value)
		},
	}
}

// ByPredicate matches elements satisfying fn.
func ByPredicate(fn func(*core.Context, core.ElementID) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds elements matching 'matching' that are descendants
// of elements matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(ctx *core.Context, root core.ElementID) []core.ElementID {
	var results []core.ElementID
	seen := make(map[core.ElementID]bool)
	for _, ancestor := range f.of.Evaluate(ctx, root) {
		for _, child := range ctx.Children(ancestor) {
			for _, match := range f.matching.Evaluate(ctx, child) {
				if !seen[match] {
					seen[match] = true
					results = append(results, match)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant matches elements satisfying 'matching' that are descendants
// of elements matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// collectMatches performs a depth-first pre-order traversal from root,
// collecting elements that satisfy the predicate.
func collectMatches(ctx *core.Context, root core.ElementID, predicate func(*core.Context, core.ElementID) bool) []core.ElementID {
	if !ctx.Exists(root) {
		return nil
	}
	var results []core.ElementID
	if predicate(ctx, root) {
		results = append(results, root)
	}
	for _, child := range ctx.Children(root) {
		results = append(results, collectMatches(ctx, child, predicate)...)
	}
	return results
}
