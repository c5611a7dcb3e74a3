package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cmd "github.com/rohmanhakim/page-scraper/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
