// Command etl converts tabular data between SQL tables, CSV and JSON.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/etl/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, os.Stderr, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}
}
