// Command guihck evaluates scripts against a guihck element tree.
package main

import (
	"os"

	"github.com/go-guihck/guihck/cmd/guihck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
