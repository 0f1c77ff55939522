// Command reflowd serves PDF and DOCX conversion over HTTP.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tsawler/reflow"
	"github.com/tsawler/reflow/internal/config"
	"github.com/tsawler/reflow/internal/server"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg := config.Load()
	logger := cfg.NewLogger()

	converter := reflow.New(reflow.WithLogger(logger))
	handler := server.NewConvertHandler(converter, cfg.MaxFileSize, logger)
	router := server.NewRouter(handler, cfg.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
	}

	go func() {
		logger.Info("Server listening", "address", srv.Addr, "max_bytes", cfg.MaxFileSize)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", "err", err)
	}
	logger.Info("Server exited")
}
