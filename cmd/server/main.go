package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MKhiriev/go-cix-vault/internal/adapter"
	"github.com/MKhiriev/go-cix-vault/internal/config"
	"github.com/MKhiriev/go-cix-vault/internal/handler"
	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/internal/metrics"
	"github.com/MKhiriev/go-cix-vault/internal/server"
	"github.com/MKhiriev/go-cix-vault/internal/service"
	"github.com/MKhiriev/go-cix-vault/internal/store"
	"github.com/MKhiriev/go-cix-vault/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	log := logger.NewLogger("cix-vault")

	log.Info().
		Object("build", models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)).
		Msg("starting")

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if err = logger.SetLevel(cfg.App.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("error setting log level")
	}
	if cfg.App.Version == config.DefaultAppVersion && buildVersion != "" {
		cfg.App.Version = buildVersion
	}

	log.Debug().
		Str("http_address", cfg.Server.HTTPAddress).
		Str("storage_driver", cfg.Storage.DB.Driver).
		Bool("encryption_enabled", cfg.Vault.EncryptionEnabled()).
		Bool("reuse_tokens", cfg.OpenID.ReuseTokens).
		Msg("received configs")

	storages, err := store.NewStorages(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer func() {
		if err := storages.Close(); err != nil {
			log.Err(err).Msg("error closing storages")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	vault, err := adapter.NewHTTPVaultAdapter(cfg.Vault, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating vault adapter")
	}
	vault = adapter.NewVaultAdapterWithMetrics(vault, metrics.NewCipherMetrics(registry))

	services, err := service.NewServices(storages, vault, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, registry, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if err = srv.RunServer(); err != nil {
		log.Err(err).Msg("server stopped with error")
	}
}
