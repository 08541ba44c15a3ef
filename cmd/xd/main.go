package main

import (
	"os"

	"github.com/bnema/exchange-dash/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
