// Package script embeds a golisp interpreter and exposes the element tree
// to it.
//
// A Runtime owns one interpreter environment bound to one core.Context.
// Creating it installs the construction stack primitives
// (push-new-element!, pop-element!, set-element-property! and friends)
// and a small prelude of helpers for building element trees declaratively:
//
//	(create-elements!
//	  (element 'rectangle
//	    (id "panel")
//	    (prop 'width 200)
//	    (element 'text
//	      (prop 'width (bound '(parent width) (lambda (w) (- w 10)))))))
//
// Property values travel between the interpreter and the tree in a small
// wire form. A bare procedure or (method proc) becomes a method,
// (bound (elem key ...) [proc]) and (bind ((elem . key) ...) [proc])
// become bindings, (alias elem key) becomes an alias, and anything else
// is stored as a literal. Element specs are element ids, the symbols this
// and parent, or id tags looked up from the receiving element outward.
//
// Errors raised by core operations keep their kind when they cross the
// interpreter, so errors.Is(err, errors.ErrStackUnderflow) works on the
// result of Context.RunScript. Interpreter failures are reported as
// errors.ErrScript.
package script
