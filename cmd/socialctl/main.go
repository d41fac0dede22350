package main

import (
	"os"

	"github.com/anthill-gaming/social/internal/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
