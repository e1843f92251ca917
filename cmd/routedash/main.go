package main

import (
	"os"

	"github.com/routedash/routedash/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
