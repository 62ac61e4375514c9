package main

import (
	"os"

	"github.com/beedata/beekit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
