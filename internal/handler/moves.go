package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wedding-seating/internal/repository"
)

// MovesHandler lists the move history recorded by the queue consumer.
type MovesHandler struct {
	Repo *repository.MoveHistoryRepo
}

func NewMovesHandler(r *repository.MoveHistoryRepo) *MovesHandler { return &MovesHandler{Repo: r} }

// ListMoves returns the most recent moves, newest first.  ?limit defaults
// to 50.
func (h *MovesHandler) ListMoves(c echo.Context) error {
	if !h.Repo.Available() {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "move history not configured"})
	}
	limit := 50
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive integer"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	moves, err := h.Repo.Recent(ctx, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"moves": moves})
}
