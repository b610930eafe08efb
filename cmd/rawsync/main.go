package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/creachadair/rawsync/internal/cli"
)

const (
	cmdName = "rawsync"

	shortDesc = "Run demonstration scenarios for rawsync primitives."
	longDesc  = `Run demonstration scenarios for the rawsync spin lock and one-shot
channel primitives.

Each subcommand constructs its own lock or channel, drives it from several
goroutines, and prints what it observed.
`
)

func main() {
	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
