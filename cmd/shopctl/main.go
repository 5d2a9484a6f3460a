package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Skotchmaster/storefront/internal/cli"
	"github.com/Skotchmaster/storefront/pkg/config"
)

func main() {
	// A missing .env is fine; a broken one is not worth failing the CLI for.
	_ = config.LoadDotenv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], cli.Options{})
	stop()
	os.Exit(code)
}
