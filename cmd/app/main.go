package main

import (
	"resort/config"
	"resort/di"
	_ "resort/docs"
	"resort/helper"
	"resort/infras/metrics"
	"resort/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title Vintage Valley Resort API
// @version 1.0
// @description Booking, payment and back office API for Vintage Valley Resort.
// @BasePath /
// @securityDefinitions.apikey SessionAuth
// @in header
// @name Authorization
// @description Session token as "Bearer <token>". Browsers send the session cookie instead.
func main() {
	cfg := config.Get()

	logger.Init(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	metrics.Register()

	http := di.InitializeService()
	http.Serve()
}
