package cmd

import (
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/go-guihck/guihck/pkg/errors"
)

// configureLogging routes commonlog to stderr, or to file when set, and
// sends runtime error reports through it.
func configureLogging(verbosity int, file string) {
	var path *string
	if file != "" {
		path = &file
	}
	commonlog.Configure(verbosity, path)
	errors.SetHandler(&errors.LogHandler{Verbose: verbosity >= 2})
}
