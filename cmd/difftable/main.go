// Package main provides the difftable CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/difftable/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
