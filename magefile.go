//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target
var Default = Build

// Build compiles the nicoforge and dsmerge binaries
func Build() error {
	fmt.Println("Building nicoforge...")
	if err := sh.Run("go", "build", "-o", "nicoforge", "./cmd/nicoforge"); err != nil {
		return err
	}
	fmt.Println("Building dsmerge...")
	return sh.Run("go", "build", "-o", "dsmerge", "./cmd/dsmerge")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and tests
func Check() {
	mg.Deps(Vet, Test)
}

// Install installs the binaries into GOBIN
func Install() error {
	if err := sh.Run("go", "install", "./cmd/nicoforge"); err != nil {
		return err
	}
	return sh.Run("go", "install", "./cmd/dsmerge")
}

// Clean removes build artifacts
func Clean() error {
	for _, bin := range []string{"nicoforge", "dsmerge"} {
		if err := os.Remove(filepath.Join(".", bin)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
