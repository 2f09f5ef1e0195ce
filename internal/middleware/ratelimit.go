package middleware

// ratelimit.go throttles the login endpoint per client IP with a fixed
// window counter in Redis (INCR + EXPIRE). Credential stuffing is the only
// traffic worth limiting here, so the limiter is scoped to the route it
// wraps instead of being a global middleware. Without Redis it is a no-op.

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
)

// RateLimitByIP allows at most limit requests per window from one IP on the
// wrapped route. The first request of a window sets the key's expiry; the
// 429 response carries a Retry-After header with the remaining window.
func RateLimitByIP(rdb *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
    disabled := rdb == nil || limit <= 0 || window <= 0
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if disabled {
                return next(c)
            }
            key := "ratelimit:" + c.Path() + ":" + c.RealIP()
            ctx, cancel := context.WithTimeout(c.Request().Context(), 300*time.Millisecond)
            defer cancel()

            n, err := rdb.Incr(ctx, key).Result()
            if err != nil {
                // Redis trouble must not lock users out.
                return next(c)
            }
            if n == 1 {
                _ = rdb.Expire(ctx, key, window).Err()
            }
            if n > int64(limit) {
                retry := window
                if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
                    retry = ttl
                }
                c.Response().Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
                return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "muitas tentativas, aguarde"})
            }
            return next(c)
        }
    }
}
