package main

import (
	"os"

	"github.com/cristianoliveira/flightdeck/cmd"
	"github.com/cristianoliveira/flightdeck/internal/colors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		colors.Error(err.Error())
		os.Exit(1)
	}
}
