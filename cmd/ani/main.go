package main

import (
	"os"

	"github.com/tormodhaugland/ani/cmd/ani/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
