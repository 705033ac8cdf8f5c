//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the engine binary into bin/.
func (Build) Engine() error {
	if err := goTidy(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/anima-fractals", "."), withStream()); err != nil {
		return err
	}
	return nil
}
