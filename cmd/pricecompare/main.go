// cmd/pricecompare/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/pricecompare/internal/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup signal handling for graceful shutdown; cancelling lets running
	// scrapes close their browser sessions before the process exits
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Interrupt received, shutting down gracefully...")
		cancel()
	}()

	code := cli.Execute(ctx)
	cancel()
	os.Exit(code)
}
