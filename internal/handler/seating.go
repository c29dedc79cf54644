package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wedding-seating/internal/reconcile"
	"github.com/iliyamo/wedding-seating/internal/report"
)

// SeatingHandler serves the reconciled seating view and guest moves.
type SeatingHandler struct {
	Svc *reconcile.Service
}

func NewSeatingHandler(svc *reconcile.Service) *SeatingHandler {
	return &SeatingHandler{Svc: svc}
}

type mesasResp struct {
	report.View
	Cache   reconcile.CacheInfo `json:"cache"`
	Warning string              `json:"warning,omitempty"`
}

// GetMesas returns every table with its guests, the unassigned list and
// the event totals.  ?force=1 skips the cache ttl.
func (h *SeatingHandler) GetMesas(c echo.Context) error {
	force, _ := strconv.ParseBool(c.QueryParam("force"))
	res, err := h.Svc.View(c.Request().Context(), force)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, mesasResp{View: res.View, Cache: res.Cache, Warning: res.Warning})
}

// tableRef accepts a table given as a JSON string ("Mesa 5", "Novios") or
// number (5).
type tableRef string

func (t *tableRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = tableRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("table must be a string or number: %w", err)
	}
	*t = tableRef(n.String())
	return nil
}

type moveReq struct {
	GuestID             int       `json:"guestId"`
	GuestName           string    `json:"guestName"`
	TargetTable         *tableRef `json:"targetTable"`
	ExpectedSourceTable *tableRef `json:"expectedSourceTable"`
}

type moveResp struct {
	OK            bool   `json:"ok"`
	GuestID       int    `json:"guestId"`
	Guest         string `json:"guest"`
	PreviousTable string `json:"previousTable"`
	NewTable      string `json:"newTable"`
	Cell          string `json:"cell"`
	Verified      bool   `json:"verified"`
	Noop          bool   `json:"noop,omitempty"`
	Warning       string `json:"warning,omitempty"`
}

// PutGuestMesa moves one guest to another table (or unassigns them) and
// reports whether the sheet confirmed the write.
func (h *SeatingHandler) PutGuestMesa(c echo.Context) error {
	var req moveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body", "code": "INVALID_BODY"})
	}
	if req.TargetTable == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "targetTable required", "code": "INVALID_TARGET"})
	}
	mr := reconcile.MoveRequest{
		GuestID:     req.GuestID,
		GuestName:   req.GuestName,
		TargetTable: string(*req.TargetTable),
	}
	if req.ExpectedSourceTable != nil {
		s := string(*req.ExpectedSourceTable)
		mr.ExpectedSourceTable = &s
	}

	res, err := h.Svc.Move(c.Request().Context(), mr)
	if err != nil {
		return writeError(c, err)
	}
	out := moveResp{
		OK:            true,
		GuestID:       res.GuestID,
		Guest:         res.Guest,
		PreviousTable: res.PreviousTable,
		NewTable:      res.NewTable,
		Cell:          res.Cell,
		Verified:      res.Verified,
		Noop:          res.Noop,
	}
	if !res.Verified {
		out.Warning = "write sent but not yet visible in the sheet"
	}
	return c.JSON(http.StatusOK, out)
}
