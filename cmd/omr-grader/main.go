package main

import (
	"os"

	"github.com/ironsheep/omr-grader/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
