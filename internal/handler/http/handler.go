package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/internal/metrics"
	"github.com/MKhiriev/go-cix-vault/internal/service"
)

type Handler struct {
	services *service.Services

	metrics        metrics.HTTPMetrics
	metricsHandler http.Handler

	logger *logger.Logger
}

// NewHandler builds the HTTP handler. HTTP collectors are registered with
// registry and served on /metrics; a nil registry disables both.
func NewHandler(services *service.Services, registry *prometheus.Registry, logger *logger.Logger) *Handler {
	h := &Handler{
		services: services,
		metrics:  metrics.NopHTTP(),
		logger:   logger,
	}
	if registry != nil {
		h.metrics = metrics.NewHTTPMetrics(registry)
		h.metricsHandler = metrics.Handler(registry)
	}

	logger.Info().Bool("metrics", registry != nil).Msg("http handler created")
	return h
}
