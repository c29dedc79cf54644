package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/wedding-seating/internal/config"
	"github.com/iliyamo/wedding-seating/internal/handler"
	"github.com/iliyamo/wedding-seating/internal/middleware"
	"github.com/iliyamo/wedding-seating/internal/utils"
)

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
	e.GET("/readyz", h.Readyz)
}

// writeGuard is the middleware chain for every mutating route: a valid
// editor token (open when jwtSecret is empty) and the token bucket.
func writeGuard(jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.EditorRole),
		middleware.NewTokenBucket(rl, rdb),
	}
}

// RegisterSeating mounts the seating view and the guest move endpoint.
func RegisterSeating(e *echo.Echo, h *handler.SeatingHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) {
	e.GET("/api/mesas", h.GetMesas)
	e.PUT("/api/guest-mesa", h.PutGuestMesa, writeGuard(jwtSecret, rl, rdb)...)
}

// RegisterCoords mounts the floor-plan coordinates store.  Reads are open,
// writes go through the editor guard.
func RegisterCoords(e *echo.Echo, h *handler.CoordsHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) {
	e.GET("/api/coords", h.GetCoords)
	e.PUT("/api/coords", h.PutCoords, writeGuard(jwtSecret, rl, rdb)...)
}

// RegisterAuth mounts the editor login behind the token bucket.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/api/auth")
	g.POST("/login", a.Login, middleware.NewTokenBucket(rl, rdb))
}

// RegisterMoves mounts the move history listing behind the editor token and
// the Redis response cache.
func RegisterMoves(e *echo.Echo, h *handler.MovesHandler, jwtSecret string, cc config.CacheConfig, rdb *redis.Client) {
	g := e.Group(
		"/api/moves",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.EditorRole),
	)
	g.GET("", h.ListMoves, middleware.NewRedisCache(cc, rdb))
}
