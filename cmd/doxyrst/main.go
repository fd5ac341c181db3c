// Package main provides the doxyrst CLI.
package main

import (
	"os"

	"github.com/example/doxyrst/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
