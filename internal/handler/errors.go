package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wedding-seating/internal/reconcile"
	"github.com/iliyamo/wedding-seating/internal/repository"
	"github.com/iliyamo/wedding-seating/internal/sheets"
)

// errorStatus maps a domain error to an HTTP status and a stable code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, reconcile.ErrInvalidTarget):
		return http.StatusBadRequest, "INVALID_TARGET"
	case errors.Is(err, reconcile.ErrInvalidGuest):
		return http.StatusBadRequest, "INVALID_GUEST"
	case errors.Is(err, reconcile.ErrIdentityMismatch):
		return http.StatusBadRequest, "IDENTITY_MISMATCH"
	case errors.Is(err, repository.ErrInvalidCoords):
		return http.StatusBadRequest, "INVALID_COORDS"
	case errors.Is(err, reconcile.ErrGuestNotFound):
		return http.StatusNotFound, "GUEST_NOT_FOUND"
	case errors.Is(err, reconcile.ErrStateConflict):
		return http.StatusConflict, "STATE_CONFLICT"
	case errors.Is(err, reconcile.ErrReadOnly):
		return http.StatusNotImplemented, "READ_ONLY"
	case errors.Is(err, reconcile.ErrWriteFailed):
		return http.StatusBadGateway, "WRITE_FAILED"
	case sheets.IsSourceError(err):
		if errors.Is(err, sheets.ErrSourceFormat) {
			return http.StatusBadGateway, "SOURCE_FORMAT"
		}
		return http.StatusBadGateway, "SOURCE_UNAVAILABLE"
	case errors.Is(err, reconcile.ErrLaneClosed), errors.Is(err, repository.ErrUnavailable):
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, "TIMEOUT"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

// writeError renders err as {"error", "code"}; a state conflict also
// carries the guest's current table.
func writeError(c echo.Context, err error) error {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
	}
	body := echo.Map{"error": err.Error(), "code": code}
	var conflict *reconcile.ConflictError
	if errors.As(err, &conflict) {
		body["currentTable"] = conflict.Current
	}
	return c.JSON(status, body)
}
