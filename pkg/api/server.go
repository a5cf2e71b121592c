// Package api exposes the tree over a small REST surface.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the chi router for the server
func NewRouter(server *Server) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	m := server.metrics
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		r.Put("/kv/{key}", m.InstrumentHandler("PUT", "/api/v1/kv/{key}", server.handlePut))
		r.Get("/kv/{key}", m.InstrumentHandler("GET", "/api/v1/kv/{key}", server.handleGet))
		r.Delete("/kv/{key}", m.InstrumentHandler("DELETE", "/api/v1/kv/{key}", server.handleDelete))
		r.Get("/kv", m.InstrumentHandler("GET", "/api/v1/kv", server.handleListKeys))

		r.Get("/stats", m.InstrumentHandler("GET", "/api/v1/stats", server.handleStats))
		r.Post("/snapshot", m.InstrumentHandler("POST", "/api/v1/snapshot", server.handleSnapshot))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured
func StartServer(engine Engine, snapshot func() error, config ServerConfig) error {
	metrics := NewMetrics()
	server := NewServer(engine, snapshot, config, metrics)
	r := NewRouter(server)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	slog.Info("starting REST API server", "addr", addr)
	return http.ListenAndServe(addr, r)
}
