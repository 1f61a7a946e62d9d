// Package main is the dessist command.
package main

import (
	"os"

	"github.com/leapstack-labs/dessist/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
