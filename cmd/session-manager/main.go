package main

import (
	"os"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// Cobra already printed the error to stderr.
		os.Exit(1)
	}
}
