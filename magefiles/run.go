//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the engine with the scene named by $SCENE (defaults to sierpinski).
func (Run) Engine() error {
	scene := os.Getenv("SCENE")
	if scene == "" {
		scene = "sierpinski"
	}
	fmt.Printf("Run engine with scene %s...\n", scene)
	if _, err := executeCmd("go", withArgs("run", "main.go", "-scene", scene), withStream()); err != nil {
		return err
	}
	return nil
}
