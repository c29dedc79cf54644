package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wedding-seating/internal/config"
	"github.com/iliyamo/wedding-seating/internal/utils"
)

// AuthHandler exchanges the shared editor password for a token.
type AuthHandler struct {
	Cfg config.Config
	Now func() time.Time
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Now: time.Now}
}

type loginReq struct {
	Password string `json:"password"`
}

type tokenResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Login: verify the editor password and return an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	if !h.Cfg.LoginEnabled() {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "editor login not configured"})
	}
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
	}
	if !utils.VerifyPassword(h.Cfg.EditorPasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	ttl := time.Duration(h.Cfg.AccessTTLMin) * time.Minute
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, "editor", utils.EditorRole, ttl, h.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, tokenResp{Token: access.Token, Expires: access.Exp})
}
