//go:build mage

package main

// Runs the unit tests of every package.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}
