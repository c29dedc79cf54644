package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/wedding-seating/internal/config"
)

// captureWriter copies up to limit bytes of the body while forwarding
// everything to the client.
type captureWriter struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.truncated {
		if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
			cw.truncated = true
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

// responseCacheKey hashes route and raw query so arbitrary query strings
// stay within a bounded key size.
func responseCacheKey(cfg config.CacheConfig, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// NewRedisCache caches successful GET responses in a Redis hash holding
// status, content type and body.  Hits carry X-Cache: HIT, misses
// X-Cache: MISS.  Other methods and non-200 responses are never cached.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key := responseCacheKey(cfg, c)

			if hit, err := rdb.HGetAll(ctx, key).Result(); err == nil && len(hit) > 0 {
				status, _ := strconv.Atoi(hit["status"])
				if status == 0 {
					status = http.StatusOK
				}
				c.Response().Header().Set("X-Cache", "HIT")
				return c.Blob(status, hit["content_type"], []byte(hit["body"]))
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated {
				return nil
			}

			contentType := c.Response().Header().Get(echo.HeaderContentType)
			body := cw.buf.String()
			_, err := rdb.TxPipelined(context.Background(), func(p redis.Pipeliner) error {
				p.HSet(context.Background(), key, "status", cw.status, "content_type", contentType, "body", body)
				p.Expire(context.Background(), key, cfg.TTL)
				return nil
			})
			if err != nil {
				c.Logger().Warnf("cache: store %s: %v", key, err)
			}
			return nil
		}
	}
}

// PurgeRedisCache drops every response cached under cfg.Prefix. It is a
// no-op when caching is off.
func PurgeRedisCache(ctx context.Context, cfg config.CacheConfig, rdb *redis.Client) error {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	iter := rdb.Scan(ctx, 0, cfg.Prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache: scan %s: %w", cfg.Prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: purge %s: %w", cfg.Prefix, err)
	}
	return nil
}
