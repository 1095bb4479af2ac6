// Package main provides the entry point for the iShell CLI.
package main

import (
	"fmt"
	"os"

	"github.com/intensifier/ishell/cmd/ishell/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
