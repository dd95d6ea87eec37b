// Command autox-mock serves a local development backend for the
// marketplace API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/autox/marketplace-client/internal/mock"
	"github.com/autox/marketplace-client/internal/pkg/config"
	"github.com/autox/marketplace-client/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{App: "autox-mock"})
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, App: "autox-mock"})
	log.Info().
		Str("port", cfg.Mock.Port).
		Str("persistence", cfg.Mock.Persistence).
		Str("revocation", cfg.Mock.Revocation).
		Msg("configuration loaded")

	backend, err := mock.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build mock backend")
	}

	serveErr := backend.Serve(ctx, ":"+cfg.Mock.Port)
	if err := backend.Close(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to release resources")
	}
	if serveErr != nil {
		log.Error().Err(serveErr).Msg("mock backend stopped")
		os.Exit(1)
	}
	log.Info().Msg("mock backend stopped")
}
