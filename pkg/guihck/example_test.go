package guihck_test

import (
	"fmt"

	"github.com/go-guihck/guihck/pkg/guihck"
)

// This example builds a small tree from a script and reads a bound
// property after one frame.
func ExampleNew() {
	app, err := guihck.New(guihck.Options{})
	if err != nil {
		panic(err)
	}
	defer app.Close()

	_, err = app.Run(`
		(create-elements!
			(element 'item (id "window") (prop 'width 640)
				(element 'item
					(prop 'width (bound '(parent width) (lambda (w) (/ w 2)))))))`)
	if err != nil {
		panic(err)
	}
	app.Frame()

	ctx := app.Context
	window := ctx.Children(ctx.Root())[0]
	half, _ := ctx.Child(window, 0)
	w, _ := ctx.Property(half, "width")
	fmt.Println(w)
	// Output: 320
}

// This example checks the script API version before loading scripts.
func ExampleApp_Require() {
	app, err := guihck.New(guihck.Options{})
	if err != nil {
		panic(err)
	}
	defer app.Close()

	fmt.Println(app.Require("v1.0.0") == nil)
	fmt.Println(app.Require("v9.0.0") == nil)
	// Output:
	// true
	// false
}
