//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every package test with the race detector.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withStream())
	return err
}

// Runs the fractal generator tests only, including the property checks.
// RAPID_CHECKS overrides the number of generated cases (default 1000).
func (Test) Fractal() error {
	checks := os.Getenv("RAPID_CHECKS")
	if checks == "" {
		checks = "1000"
	}
	_, err := executeCmd("go", withArgs("test", "-count=1", ".", "-args", "-rapid.checks="+checks), withDir("engine/fractal"), withStream())
	return err
}

// Writes a coverage profile to bin/coverage.out.
func (Test) Cover() error {
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("test", "-count=1", "-coverprofile=bin/coverage.out", "./..."), withEnv("CGO_ENABLED=0"), withStream())
	return err
}
