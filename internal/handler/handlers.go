package handler

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/go-cix-vault/internal/config"
	"github.com/MKhiriev/go-cix-vault/internal/handler/http"
	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

// NewHandlers builds the transport handlers enabled by cfg. registry may be
// nil to run without metrics.
func NewHandlers(services *service.Services, registry *prometheus.Registry, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{HTTP: http.NewHandler(services, registry, logger)}, nil
}
