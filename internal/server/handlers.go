package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/pwnholic/slideconv/internal/clients"
	"github.com/pwnholic/slideconv/internal/exports"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Convert handles POST /convert: validates the request, runs the conversion
// synchronously and streams the artifact back as an attachment.
func (h *Handlers) Convert(c echo.Context) error {
	var req exports.ConversionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
	}

	artifact, err := h.Exporter.Convert(&req)
	switch {
	case errors.Is(err, exports.ErrNoImages), errors.Is(err, exports.ErrUnknownFormat):
		h.Metrics.Inc(c.Request().Context(), "conversions_total", map[string]string{"format": req.Format, "outcome": "rejected"})
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case err != nil:
		h.Metrics.Inc(c.Request().Context(), "conversions_total", map[string]string{"format": req.Format, "outcome": "failed"})
		log.Error().Err(err).Msg("conversion failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("conversion failed: %s", err)})
	}

	h.Metrics.Inc(c.Request().Context(), "conversions_total", map[string]string{"format": req.Format, "outcome": "ok"})

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	return c.Blob(http.StatusOK, artifact.ContentType, artifact.Buffer.Bytes())
}

// Extract handles POST /extract: harvests image URLs from a remote page so a
// caller can feed them straight into /convert.
func (h *Handlers) Extract(c echo.Context) error {
	var target clients.ScrapeTarget
	if err := c.Bind(&target); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
	}
	if target.RawURL == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "no page URL provided"})
	}

	links, err := h.Scraper.CollectImageLinks(&target)
	if err != nil {
		log.Error().Err(err).Str("page", target.RawURL).Msg("extraction failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("extraction failed: %s", err)})
	}
	if links == nil {
		links = []string{}
	}

	return c.JSON(http.StatusOK, map[string][]string{"images": links})
}

// Health handles GET /health.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy", "service": "slideconv"})
}

// MetricsSnapshot handles GET /metrics with a plain-text counter dump.
func (h *Handlers) MetricsSnapshot(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	for _, line := range h.Metrics.SnapshotLines() {
		if _, err := c.Response().Write([]byte(line + "\n")); err != nil {
			return err
		}
	}
	return nil
}
