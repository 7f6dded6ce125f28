package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"networth/internal/app/webserver"
	"networth/internal/config"
	applog "networth/internal/infra/log"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML config (default: $NETWORTH_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := applog.NewLogger(cfg)

	srv, err := webserver.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init failed")
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	} else {
		logger.Info().Msg("server stopped gracefully")
	}
}
