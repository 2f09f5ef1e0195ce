package middleware

import (
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
)

func setupTestRedis(t *testing.T) *redis.Client {
    t.Helper()
    mr, err := miniredis.Run()
    require.NoError(t, err)
    t.Cleanup(mr.Close)
    return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// unitListHandler pretends to be the unidades endpoint: the body depends on
// the caller's home unit.
func unitListHandler(c echo.Context) error {
    unidade, _ := UnidadeIDFrom(c)
    return c.JSONBlob(http.StatusOK, []byte(fmt.Sprintf(`{"unidades":[%d]}`, unidade)))
}

func doCachedGET(t *testing.T, mw echo.MiddlewareFunc, role string, unidadeID uint64) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/unidades", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetPath("/v1/unidades")
    c.Set("role", role)
    c.Set("unidade_id", float64(unidadeID))

    require.NoError(t, mw(unitListHandler)(c))
    return rec
}

func TestCacheGETDoesNotLeakAcrossOperadores(t *testing.T) {
    rdb := setupTestRedis(t)
    mw := CacheGET(rdb, time.Minute)

    // First operador primes the cache with their own unit list.
    first := doCachedGET(t, mw, model.RoleOperador, 10)
    assert.JSONEq(t, `{"unidades":[10]}`, first.Body.String())

    // A second operador at a different unit must get their own list, not
    // the first caller's cached payload.
    second := doCachedGET(t, mw, model.RoleOperador, 11)
    assert.JSONEq(t, `{"unidades":[11]}`, second.Body.String())
}

func TestCacheGETServesCachedBodyToSameCaller(t *testing.T) {
    rdb := setupTestRedis(t)
    mw := CacheGET(rdb, time.Minute)

    calls := 0
    counting := func(c echo.Context) error {
        calls++
        return c.JSONBlob(http.StatusOK, []byte(`{"indicadores":[]}`))
    }

    for i := 0; i < 3; i++ {
        e := echo.New()
        req := httptest.NewRequest(http.MethodGet, "/v1/indicadores", nil)
        rec := httptest.NewRecorder()
        c := e.NewContext(req, rec)
        c.SetPath("/v1/indicadores")
        c.Set("role", model.RoleGestor)
        c.Set("unidade_id", float64(10))

        require.NoError(t, mw(counting)(c))
        assert.JSONEq(t, `{"indicadores":[]}`, rec.Body.String())
    }
    assert.Equal(t, 1, calls)
}

func TestCacheGETNilClientIsNoOp(t *testing.T) {
    mw := CacheGET(nil, time.Minute)

    rec := doCachedGET(t, mw, model.RoleOperador, 10)

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"unidades":[10]}`, rec.Body.String())
}

func TestCacheKeyDistinguishesCallerScope(t *testing.T) {
    e := echo.New()
    newCtx := func(path, role string, unidade uint64) echo.Context {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
        c.SetPath(path)
        c.Set("role", role)
        c.Set("unidade_id", float64(unidade))
        return c
    }

    a := cacheKey(newCtx("/v1/unidades", model.RoleOperador, 10))
    b := cacheKey(newCtx("/v1/unidades", model.RoleOperador, 11))
    assert.NotEqual(t, a, b)

    again := cacheKey(newCtx("/v1/unidades", model.RoleOperador, 10))
    assert.Equal(t, a, again)
}
