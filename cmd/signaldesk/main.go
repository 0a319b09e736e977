// Package main is the entry point for the signaldesk CLI.
package main

import (
	"os"

	"github.com/signaldesk/signaldesk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
