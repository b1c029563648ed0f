package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"traffic-rollup/internal/app"
	"traffic-rollup/internal/shared/configs"
)

func main() {
	configPath := "./configs/configs.yml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := configs.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	go func() {
		if err := application.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			_ = application.Close()
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	// Runs in flight get the full write timeout to finish.
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.WriteTimeout)*time.Second)
	defer cancel()

	if err := application.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server forced to shutdown: %v\n", err)
		_ = application.Close()
	}
}
