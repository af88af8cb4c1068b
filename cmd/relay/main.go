package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meshsync/internal/app"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New()
	if err != nil {
		log.Fatalf("Failed to initialize relay: %v", err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.Start() }()

	select {
	case <-ctx.Done():
		log.Println("Shutting down relay...")
	case err := <-serveErr:
		if err != nil {
			log.Printf("Relay server stopped: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Relay forced to shutdown: %v", err)
	}
	log.Println("Relay exiting")
}
