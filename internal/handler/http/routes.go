package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(h.withMetrics)

	router.NotFound(h.notFound)
	router.MethodNotAllowed(h.methodNotAllowed)

	// routes without a security context
	router.Get("/api/version/", h.getServerVersion)
	router.Post("/api/sessions", h.startSession)
	if h.metricsHandler != nil {
		router.Method("GET", "/metrics", h.metricsHandler)
	}

	router.Group(func(r chi.Router) {
		r.Use(h.withSecurityContext)
		r.Use(middleware.Compress(5, "application/json"))

		r.Route("/api/documents/{model}", func(r chi.Router) {
			r.Post("/", h.createDocuments)
			r.Get("/", h.findDocuments)
			r.Get("/{id}", h.getDocument)
			r.Patch("/{id}", h.updateDocument)
			r.Put("/{id}", h.replaceDocument)
		})
	})

	return router
}
