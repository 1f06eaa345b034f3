package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"spendora-service/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := app.NewServer()

	// Run server in a separate goroutine so we can listen for shutdown signals
	go func() {
		if err := srv.Start(ctx); err != nil {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	cancel()
	srv.Stop()

	log.Println("server stopped gracefully")
}
