// Command autox is the marketplace command line client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/autox/marketplace-client/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app := &cli.App{Out: os.Stdout, Err: os.Stderr}
	if err := cli.Execute(ctx, app, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}
}
