package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/goliatone/go-ispdn/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Run(ctx, os.Args, version)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
