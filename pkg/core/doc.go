// Package core provides the element tree, property engine, construction
// stack, and update/render scheduler of the guihck runtime.
//
// # Elements
//
// A Context owns a tree of elements addressed by ElementID. Every context
// starts with a root element (RootID) that has no type and cannot be
// destroyed. Element types are registered by name with a Behavior:
//
//	c := core.NewContext()
//	box, _ := c.Register("box", core.Funcs{
//	    OnUpdate: func(c *core.Context, id core.ElementID, data any) bool {
//	        return false
//	    },
//	}, 0)
//	id, _ := c.CreateElement(box, c.Root())
//
// Ids are never reused. Holding an id past DestroyElement is safe: any
// later use fails with errors.ErrInvalidElement.
//
// # Properties
//
// Each element carries named properties. A property holds one of four
// variants:
//
//   - Literal: a plain value (int64, float64, string, bool, ElementID, or a list)
//   - Binding: computed on every read from other properties
//   - Alias: reads and literal writes go to another element's property
//   - Method: a callable bound to the element that declared it
//
// Reads never fail for missing properties; they return Unset. Setting a
// binding or alias that would make a property depend on itself fails with
// errors.ErrBindingCycle.
//
// Listeners registered with AddListener run synchronously after each write
// to their property.
//
// # Construction stack
//
// Stack is the cursor used by scripts to build and navigate the tree
// without holding references into it:
//
//	s := c.Stack()
//	s.PushNewElementByName("box")
//	s.SetElementProperty("width", core.Literal{V: 100})
//	s.Pop()
//
// The root is the base frame; popping it fails with
// errors.ErrStackUnderflow. WithElement and Guard restore the stack on
// every exit path.
//
// # Frames
//
// Frame runs Update, which repeats update passes until no element reports
// a change (bounded by WithMaxUpdatePasses), and then Render. Callbacks
// run with their element on top of the construction stack, and panics
// inside them are reported through errors.ReportPanic without aborting
// the pass.
package core
