package core

import (
	"slices"

	"github.com/go-guihck/guihck/pkg/errors"
)

type phase uint8

const (
	phaseIdle phase = iota
	phaseUpdate
	phaseRender
)

func (p phase) op() string {
	switch p {
	case phaseUpdate:
		return "core.Update"
	case phaseRender:
		return "core.Render"
	default:
		return "core"
	}
}

// UpdateStats describes one call to Update.
type UpdateStats struct {
	// Passes is the number of update passes that ran.
	Passes int
	// Settled is true when the last pass reported no change.
	Settled bool
	// Visited counts Update callbacks across all passes.
	Visited int
}

// Update runs update passes over the active tree until a pass reports no
// change or the pass cap is reached. A pass is changed when any Update
// callback returns true or when elements were created, destroyed, or
// moved while it ran.
func (c *Context) Update() UpdateStats {
	var stats UpdateStats
	for stats.Passes < c.maxUpdatePasses {
		stats.Passes++
		changed, visited := c.runPass(phaseUpdate)
		stats.Visited += visited
		if !changed {
			stats.Settled = true
			return stats
		}
	}
	c.log.Warningf("update did not settle after %d passes", stats.Passes)
	return stats
}

// Render runs one render pass over the active tree.
func (c *Context) Render() {
	c.runPass(phaseRender)
}

// Frame clears the needs-frame flag, then runs Update followed by Render.
func (c *Context) Frame() UpdateStats {
	c.needsFrame = false
	stats := c.Update()
	c.Render()
	return stats
}

// NeedsFrame reports whether something requested a frame since the last
// call to Frame.
func (c *Context) NeedsFrame() bool {
	return c.needsFrame
}

// RequestFrame marks the context as needing a frame. The OnNeedsFrame
// callback runs when the flag turns on.
func (c *Context) RequestFrame() {
	if c.needsFrame {
		return
	}
	c.needsFrame = true
	if c.onNeedsFrame != nil {
		c.onNeedsFrame()
	}
}

func (c *Context) structureChanged() {
	if c.phase == phaseUpdate {
		c.structureDirty = true
	}
	c.RequestFrame()
}

// runPass visits active elements in pre-order. Each node's children are
// snapshotted when it is visited, so elements detached during the pass are
// skipped and elements created during the pass carry the current stamp
// and wait for the next one.
func (c *Context) runPass(p phase) (changed bool, visited int) {
	prev := c.phase
	c.phase = p
	c.structureDirty = false
	c.pass++
	stamp := c.pass
	defer func() { c.phase = prev }()

	var visit func(id, parent ElementID)
	visit = func(id, parent ElementID) {
		e, ok := c.elements[id]
		if !ok || !e.active || e.stamp == stamp || e.parent != parent {
			return
		}
		e.stamp = stamp
		if e.desc != nil {
			visited++
			if c.invoke(p, e) {
				changed = true
			}
		}
		if !e.active {
			return
		}
		for _, child := range slices.Clone(e.children) {
			visit(child, id)
		}
	}
	visit(RootID, 0)

	if p == phaseUpdate && c.structureDirty {
		changed = true
	}
	return changed, visited
}

func (c *Context) invoke(p phase, e *element) (changed bool) {
	restore := c.stack.Guard()
	defer restore()
	defer func() {
		if r := recover(); r != nil {
			errors.ReportPanic(errors.Recovered(p.op(), uint64(e.id), r))
			changed = false
		}
	}()
	c.stack.push(e.id)
	switch p {
	case phaseUpdate:
		return e.desc.Behavior.Update(c, e.id, e.data)
	case phaseRender:
		e.desc.Behavior.Render(c, e.id, e.data)
	}
	return false
}
