package main

import (
	"os"

	"github.com/kmi-labs/kiba/cmd/kiba/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
