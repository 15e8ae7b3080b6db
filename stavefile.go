//go:build stave

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target when running `stave` with no arguments.
var Default = All

var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"c": Clean,
	"p": Pipeline,
}

// stageCommands are the binaries under cmd/.
var stageCommands = []string{
	"comment-normalizer",
	"sentence-splitter",
	"aspect-extractor",
	"annotator-agreement",
	"corpus-builder",
	"mams-converter",
	"absa-pipeline",
}

// All runs lint, test, and build.
func All() error {
	st.Deps(Init)
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Init ensures the module dependencies are up to date.
func Init() error {
	return sh.Run("go", "mod", "tidy")
}

// Build compiles every stage command into bin/.
func Build() error {
	st.Deps(Init)
	for _, name := range stageCommands {
		out := filepath.Join("bin", name)
		if runtime.GOOS == "windows" {
			out += ".exe"
		}
		rebuild, err := target.Glob(out, "**/*.go", "go.mod", "go.sum")
		if err != nil {
			return fmt.Errorf("checking rebuild: %w", err)
		}
		if !rebuild {
			if st.Verbose() {
				fmt.Println(name, "is up to date")
			}
			continue
		}
		if err := sh.RunV("go", "build", "-o", out, "./cmd/"+name); err != nil {
			return fmt.Errorf("building %s: %w", name, err)
		}
	}
	return nil
}

// Test runs all tests with race detection and coverage.
func Test() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// Lint runs golangci-lint on the codebase.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := sh.Rm("bin/"); err != nil {
		return fmt.Errorf("removing bin/: %w", err)
	}
	return nil
}

// Pipeline runs the dataset pipeline. PIPELINE_CONFIG selects a YAML file.
func Pipeline() error {
	args := []string{"run", "./cmd/absa-pipeline"}
	if cfg := os.Getenv("PIPELINE_CONFIG"); cfg != "" {
		args = append(args, "-config", cfg)
	}
	return sh.RunV("go", args...)
}

// MAMS converts the MAMS benchmark files only.
func MAMS() error {
	return sh.RunV("go", "run", "./cmd/absa-pipeline", "-only-stage", "mams")
}
