package main

import (
	"os"

	"github.com/Littlesheepxy/sourcing-copilot-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
