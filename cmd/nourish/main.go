package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tableflip.dev/nourish/pkg/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.New().ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("error during command execution: %v", err)
	}
}
