package main

import (
	"os"

	"github.com/annolab/go-consensus/cmd/consensus/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
