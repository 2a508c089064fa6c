package main

import (
	"os"

	"ratchetkit/cmd/ratchetkit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
