package main

import (
	"os"

	"github.com/msto63/cdlc/cmd/cdlc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
