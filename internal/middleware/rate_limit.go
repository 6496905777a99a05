package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"torqbay/internal/caching"
)

// RateLimit caps requests per client IP for a route group using the redis
// counter in the cache service. Redis trouble fails open so checkout never
// depends on the cache being up.
func RateLimit(cacheSvc caching.CacheService, name string, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := fmt.Sprintf("%s:%s", name, c.RealIP())
			limited, err := cacheSvc.IsRateLimited(c.Request().Context(), key, limit, window)
			if err != nil {
				return next(c)
			}
			if limited {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, slow down")
			}
			return next(c)
		}
	}
}
