package main

import (
	"os"

	"github.com/implicitcad/brep/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
