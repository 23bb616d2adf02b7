package main

import (
	"os"

	"github.com/abhisek/prava/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
