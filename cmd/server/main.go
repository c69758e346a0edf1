package main

import (
	"github.com/rs/zerolog/log"

	"github.com/go-petr/mem-bank/cmd/httpserver"
	"github.com/go-petr/mem-bank/internal/middleware"
	"github.com/go-petr/mem-bank/pkg/configpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	server := httpserver.New(logger, config)

	logger.Info().Str("address", config.ServerAddress).Msg("starting server")

	if err := server.Engine.Run(config.ServerAddress); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
