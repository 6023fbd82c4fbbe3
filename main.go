package main

import (
	"os"

	"github.com/plugsmart/chargeplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
