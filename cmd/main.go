package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"minutes_linker/internal/cli"
	"minutes_linker/internal/logging"
)

func main() {
	logger := logging.NewLogger(os.Stderr, slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:], logger); err != nil {
		logger.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
