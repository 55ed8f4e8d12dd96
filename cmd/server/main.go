package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"

	"github.com/pr-poehali-dev/yugan-bank-registration/cmd/httpserver"
	"github.com/pr-poehali-dev/yugan-bank-registration/internal/middleware"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/configpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	db, err := bolt.Open(config.StorePath, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot open account store")
	}
	defer db.Close()

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	err = http.ListenAndServe(config.ServerAddress, server)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
