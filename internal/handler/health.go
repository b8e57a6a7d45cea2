package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"service-proxy-go/internal/registry"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	registry *registry.Registry
	version  Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(reg *registry.Registry, v Version) *HealthHandler {
	return &HealthHandler{registry: reg, version: v}
}

// Healthz returns a simple OK response for liveness probes.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type statusResponse struct {
	Status   string   `json:"status"`
	Version  string   `json:"version"`
	Services []string `json:"services"`
}

// Status reports the build version and the registered service keys.
func (h *HealthHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Status:   "ok",
		Version:  string(h.version),
		Services: h.registry.Keys(),
	})
}
