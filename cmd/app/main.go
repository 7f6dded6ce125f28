package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"networth/internal/app/realflow"
	"networth/internal/config"
	"networth/internal/domain"
	applog "networth/internal/infra/log"
	"networth/internal/transport/cli"
	"networth/internal/usecase/report"
)

func main() {
	btc := flag.Float64("btc", math.NaN(), "quantity to liquidate (default: assumed Satoshi holdings)")
	coin := flag.String("coin", "", "base asset to liquidate (default: btc.coin from config)")
	cfgPath := flag.String("config", "", "path to YAML config (default: $NETWORTH_CONFIG)")
	asJSON := flag.Bool("json", false, "print the report as JSON")
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

	req := report.BTCRequest{Coin: cfg.BTC.Coin}
	if *coin != "" {
		req.Coin = *coin
	}
	if !math.IsNaN(*btc) {
		if *btc < 0 || math.IsInf(*btc, 0) {
			fmt.Fprintf(os.Stderr, "-btc must be a finite number >= 0\n")
			os.Exit(2)
		}
		req.Quantity = btc
	}

	rf, err := realflow.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := rf.Service.BTC(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrAllSourcesFailed) {
			for _, s := range rep.SkippedSources {
				fmt.Fprintf(os.Stderr, "  %s\n", s)
			}
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	pr := cli.NewCLIPresenter(os.Stdout)
	if *asJSON {
		if err := pr.WriteJSON(rep); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	pr.ShowBTCReport(rep)
}
