package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wedding-seating/internal/repository"
)

// CoordsHandler persists the floor-plan positions of the tables.
type CoordsHandler struct {
	Repo *repository.CoordsRepo
}

func NewCoordsHandler(r *repository.CoordsRepo) *CoordsHandler { return &CoordsHandler{Repo: r} }

// GetCoords returns {key: [x, y]} for every table with a saved position.
func (h *CoordsHandler) GetCoords(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	all, err := h.Repo.All(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, all)
}

// PutCoords upserts the posted positions and returns the full set.
func (h *CoordsHandler) PutCoords(c echo.Context) error {
	var body repository.Coords
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body", "code": "INVALID_BODY"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Repo.Save(ctx, body); err != nil {
		return writeError(c, err)
	}
	all, err := h.Repo.All(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "coords": all})
}
