package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"

	"tableflip.dev/memoir/pkg/commands"
	"tableflip.dev/memoir/pkg/commands/options"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands.New().ExecuteContext(ctx); err != nil {
		if errors.Is(err, options.ErrReported) {
			stop()
			os.Exit(1)
		}
		log.Fatalf("error during command execution: %v", err)
	}
}
