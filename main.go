package main

import (
	"os"

	"github.com/yeremiapane/restaurant-ordering/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
