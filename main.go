package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	config, err := LoadConfig(".env")
	if err != nil {
		Logger.Fatalf("failed to load config: %v", err)
	}
	system, err := NewSystem(config, os.Stdout)
	if err != nil {
		Logger.Fatalf("failed to create benchmark: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = system.Run(ctx)
	stop()
	if err != nil {
		Logger.Fatalf("benchmark failed: %v", err)
	}
	_ = Logger.Sync()
}
