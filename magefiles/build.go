//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var shaderSources = []string{"sprite.vert", "sprite.frag"}

const shaderDir = "assets/shaders"

// Compiles the sprite shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the testbed binary.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/tessera", "."), withStream())
	return err
}

func buildShaders() error {
	for _, src := range shaderSources {
		in := filepath.Join(shaderDir, src)
		out := in + ".spv"
		if _, err := executeCmd("glslc", withArgs(in, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}
