package main

import (
	"os"

	"github.com/qtsys/quant/cmd/quant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
