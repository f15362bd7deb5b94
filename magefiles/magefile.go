//go:build mage

// Package main provides build targets for guihck using Mage.
//
// Usage:
//
//	mage build     Compile the guihck binary to bin/
//	mage test      Run all tests
//	mage golden    Regenerate golden snapshot files
//	mage lint      Run golangci-lint
//	mage vet       Run go vet
//	mage clean     Remove build artifacts
//	mage install   Install guihck to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "guihck"
	binaryDir  = "bin"
	cmdDir     = "./cmd/guihck"
	cmdPkg     = "github.com/go-guihck/guihck/cmd/guihck/cmd"
)

// ldflags stamps the build time into the version output.
func ldflags() string {
	return fmt.Sprintf("-X %s.BuildTime=%s", cmdPkg, time.Now().UTC().Format(time.RFC3339))
}

// Build compiles the guihck binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Golden regenerates the golden files under testdata/golden.
func Golden() error {
	return sh.RunV("go", "test", "./pkg/snapshot/...", "./pkg/testing/...", "-update")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	mg.Deps(Vet)
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}

// Install installs guihck to GOPATH/bin.
func Install() error {
	return sh.RunV("go", "install", "-ldflags", ldflags(), cmdDir)
}
