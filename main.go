package main

import (
	"log/slog"
	"os"

	"github.com/USA-RedDragon/arm-panel/cmd"
)

// Set by the linker.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := cmd.NewCommand(version, commit).Execute(); err != nil {
		slog.Error("Encountered an error", "error", err.Error())
		os.Exit(1)
	}
}
