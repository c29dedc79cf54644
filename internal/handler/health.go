package handler // declare the package name; contains HTTP handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Readiness is what /readyz asks: has the service built a view yet.
type Readiness interface {
	Ready() bool
}

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	Ready   Readiness
	Started time.Time
}

func NewHealthHandler(r Readiness) *HealthHandler {
	return &HealthHandler{Ready: r, Started: time.Now()}
}

// Health reports that the process is up.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
		"uptime": time.Since(h.Started).Round(time.Second).String(),
	})
}

// Readyz answers 200 once the seating cache is warm, 503 before.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if h.Ready == nil || !h.Ready.Ready() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"ready": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"ready": true})
}
