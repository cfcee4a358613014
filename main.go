package main

import (
	"context"
	"os"

	"github.com/halcyon-lab/minerva/pkg/cli"
)

// version is overridden via -ldflags at release build time.
var version = "dev"

func main() {
	ctx := context.Background()
	if err := cli.Run(ctx, os.Args, version); err != nil {
		os.Exit(1)
	}
}
