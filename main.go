package main

import (
	"os"

	"github.com/skillswap/skillswap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
