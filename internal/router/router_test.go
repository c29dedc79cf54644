package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wedding-seating/internal/config"
	"github.com/iliyamo/wedding-seating/internal/handler"
	"github.com/iliyamo/wedding-seating/internal/model"
	"github.com/iliyamo/wedding-seating/internal/reconcile"
	"github.com/iliyamo/wedding-seating/internal/repository"
	"github.com/iliyamo/wedding-seating/internal/utils"
)

type staticSheet struct{}

func (staticSheet) ReadSnapshot(ctx context.Context) (model.Snapshot, error) {
	return model.Snapshot{
		Headers: []string{"Nombre", "+1", "Mesa"},
		Rows:    [][]string{{"Ana", "no", "Mesa 3"}},
		Columns: model.ColumnMap{Name: 0, PlusOne: 1, Table: 2, Group: -1, Attending: -1},
	}, nil
}

func (staticSheet) WriteCell(ctx context.Context, cell, value string) error { return nil }

const secret = "router-secret"

func newEcho(t *testing.T, rdb *redis.Client, rl config.RateLimitConfig) *echo.Echo {
	t.Helper()
	svc := reconcile.NewService(staticSheet{}, reconcile.WithWriter(staticSheet{}))
	t.Cleanup(svc.Close)

	e := echo.New()
	RegisterRoutes(e, handler.NewHealthHandler(svc))
	RegisterSeating(e, handler.NewSeatingHandler(svc), secret, rl, rdb)
	RegisterCoords(e, handler.NewCoordsHandler(repository.NewCoordsRepo(rdb, "test:coords")), secret, rl, rdb)
	RegisterAuth(e, handler.NewAuthHandler(config.Config{JWTSecret: secret}), rl, rdb)
	RegisterMoves(e, handler.NewMovesHandler(repository.NewMoveHistoryRepo(nil)), secret, config.CacheConfig{}, rdb)
	return e
}

func request(e *echo.Echo, method, path, body, token string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func editorToken(t *testing.T) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, "editor", utils.EditorRole, time.Hour, time.Now())
	require.NoError(t, err)
	return tok.Token
}

func TestRoutes(t *testing.T) {
	e := newEcho(t, nil, config.RateLimitConfig{})
	token := editorToken(t)
	move := `{"guestId":2,"guestName":"Ana","targetTable":3}`

	assert.Equal(t, http.StatusOK, request(e, http.MethodGet, "/healthz", "", ""))
	assert.Equal(t, http.StatusOK, request(e, http.MethodGet, "/api/mesas", "", ""))
	assert.Equal(t, http.StatusOK, request(e, http.MethodGet, "/readyz", "", ""))

	assert.Equal(t, http.StatusUnauthorized, request(e, http.MethodPut, "/api/guest-mesa", move, ""))
	assert.Equal(t, http.StatusOK, request(e, http.MethodPut, "/api/guest-mesa", move, token))

	assert.Equal(t, http.StatusServiceUnavailable, request(e, http.MethodGet, "/api/coords", "", ""))
	assert.Equal(t, http.StatusUnauthorized, request(e, http.MethodPut, "/api/coords", `{}`, ""))

	assert.Equal(t, http.StatusUnauthorized, request(e, http.MethodGet, "/api/moves", "", ""))
	assert.Equal(t, http.StatusNotImplemented, request(e, http.MethodGet, "/api/moves", "", token))

	assert.Equal(t, http.StatusNotImplemented, request(e, http.MethodPost, "/api/auth/login", `{"password":"x"}`, ""))
}

func TestWriteRoutesRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rl := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            5 * time.Minute,
		KeyStrategy:    "ip_editor_route",
		Prefix:         "test:rl",
	}
	e := newEcho(t, rdb, rl)
	token := editorToken(t)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, request(e, http.MethodPut, "/api/coords", `{"1":[1,1]}`, token))
	}
	assert.Equal(t, http.StatusTooManyRequests, request(e, http.MethodPut, "/api/coords", `{"1":[1,1]}`, token))
	assert.Equal(t, http.StatusOK, request(e, http.MethodGet, "/api/coords", "", ""), "reads are not limited")
}
