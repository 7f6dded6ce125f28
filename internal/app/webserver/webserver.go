package webserver

import (
	"github.com/rs/zerolog"

	"networth/internal/app/realflow"
	"networth/internal/config"
	"networth/internal/infra/metrics"
	"networth/internal/transport/httpapi"
)

func New(cfg config.Config, logger zerolog.Logger) (*httpapi.Server, error) {
	// живые адаптеры + fan-out + сервис отчётов
	rf, err := realflow.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	reg := metrics.Init(logger)
	return httpapi.New(cfg.HTTP.Addr, rf.Service, rf.Repo, metrics.Handler(reg),
		logger.With().Str("component", "httpapi").Logger()), nil
}
