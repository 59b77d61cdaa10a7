package main

import (
	"os"

	"github.com/wegman-software/gpkg2road/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
