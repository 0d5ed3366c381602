package main

import (
	"os"

	"resort/config"
	"resort/helper"
	"resort/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.Init(cfg)

	if len(os.Args) < 2 {
		log.Fatal().Msg("usage: migrate up|down|step-up|drop")
	}

	direction, err := helper.ParseDirection(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Str("direction", os.Args[1]).Msg("invalid direction")
	}

	if err := helper.Migrate(cfg, direction); err != nil {
		log.Fatal().Err(err).Str("direction", os.Args[1]).Msg("migration failed")
	}
}
