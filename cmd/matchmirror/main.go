package main

import (
	"os"

	"github.com/rbenali/matchmirror/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
