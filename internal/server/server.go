package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pwnholic/slideconv/internal/clients"
	"github.com/pwnholic/slideconv/internal/exports"
	"github.com/pwnholic/slideconv/internal/metrics"
)

// Handlers carries the collaborators every route needs.
type Handlers struct {
	Exporter *exports.Exporter
	Scraper  *clients.ClientRequest
	Metrics  *metrics.Registry
}

// New wires the echo instance: recovery, CORS, request logging and routes.
func New(h *Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	e.Use(RequestLogger(h.Metrics))

	e.POST("/convert", h.Convert)
	e.POST("/extract", h.Extract)
	e.GET("/health", h.Health)
	e.GET("/metrics", h.MetricsSnapshot)

	return e
}
