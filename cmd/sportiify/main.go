// Command sportiify is a terminal client for the Sportiify API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sportiify/internal/logger"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New("")
	if err := run(ctx, os.Args[1:], os.Stdout, log); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
