package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"networth/internal/app/realflow"
	"networth/internal/config"
	applog "networth/internal/infra/log"
	"networth/internal/transport/cli"
	"networth/internal/usecase/report"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML config (default: $NETWORTH_CONFIG)")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	delay := flag.Duration("delay", -1, "pause between symbols (default: equities.throttle from config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *delay >= 0 {
		cfg.Equities.Throttle = *delay
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := applog.NewLogger(cfg)

	rf, err := realflow.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Dur("throttle", cfg.Equities.Throttle).Msg("fetching equity depth one symbol at a time")
	start := time.Now()
	rep, err := rf.Service.Equities(ctx, report.EquityRequest{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Dur("took", time.Since(start)).Msg("equity report done")

	pr := cli.NewCLIPresenter(os.Stdout)
	if *asJSON {
		if err := pr.WriteJSON(rep); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	pr.ShowEquityReport(rep)
}
