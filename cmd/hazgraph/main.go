package main

import (
	"os"

	"github.com/hazgraph/hazgraph/cmd/hazgraph/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
