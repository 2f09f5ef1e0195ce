package middleware

// cache.go implements a small Redis response cache for the read-mostly
// reference endpoints (unidades, indicadores). Entries are keyed by route,
// query string, the caller's role and their home unit: the unit list an
// operador sees is scoped to their own unit, so two operadores at different
// units must never share an entry. Entries live for a fixed TTL; reference
// data changes rarely enough that expiry alone keeps the cache honest. When
// Redis is not available the middleware is a no-op.

import (
    "bytes"
    "context"
    "crypto/sha1"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
)

// bodyRecorder duplicates the response body while it streams to the client
// so a successful payload can be stored after the handler returns.
type bodyRecorder struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
}

func (w *bodyRecorder) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
    w.buf.Write(b)
    return w.ResponseWriter.Write(b)
}

// CacheGET caches successful GET responses of the wrapped routes in Redis
// for ttl. Only 200 responses are stored; errors always go back to the
// handler. rdb may be nil, in which case caching is disabled.
func CacheGET(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
    disabled := rdb == nil || ttl <= 0
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if disabled || c.Request().Method != http.MethodGet {
                return next(c)
            }
            key := cacheKey(c)
            ctx, cancel := context.WithTimeout(c.Request().Context(), 300*time.Millisecond)
            defer cancel()
            if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
                return c.JSONBlob(http.StatusOK, body)
            }

            rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK}
            c.Response().Writer = rec
            if err := next(c); err != nil {
                return err
            }
            if rec.status == http.StatusOK && rec.buf.Len() > 0 {
                // Best effort; a failed SET only means a cache miss later.
                _ = rdb.Set(context.Background(), key, rec.buf.Bytes(), ttl).Err()
            }
            return nil
        }
    }
}

// cacheKey hashes route, query, role and home unit into a stable Redis
// key. Role alone is not enough: an operador's response can depend on
// which unit they belong to.
func cacheKey(c echo.Context) string {
    unidade, _ := UnidadeIDFrom(c)
    seed := fmt.Sprintf("%s?%s|%s|%d", c.Path(), c.Request().URL.RawQuery, RoleFrom(c), unidade)
    sum := sha1.Sum([]byte(seed))
    return fmt.Sprintf("refcache:%x", sum[:])
}
