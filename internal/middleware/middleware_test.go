package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/utils"
)

const testSecret = "segredo-de-teste"

func doAuth(t *testing.T, header string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    if header != "" {
        req.Header.Set("Authorization", header)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    h := JWTAuth(testSecret)(func(c echo.Context) error {
        return c.String(http.StatusOK, "ok")
    })
    require.NoError(t, h(c))
    return rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
    at, err := utils.NewAccessToken(testSecret, 7, model.RoleGestor, 3, 5)
    require.NoError(t, err)

    rec := doAuth(t, "Bearer "+at.Token)

    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthRejectsMissingOrMalformedHeader(t *testing.T) {
    assert.Equal(t, http.StatusUnauthorized, doAuth(t, "").Code)
    assert.Equal(t, http.StatusUnauthorized, doAuth(t, "Token abc").Code)
    assert.Equal(t, http.StatusUnauthorized, doAuth(t, "Bearer nao-e-um-jwt").Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
    at, err := utils.NewAccessToken("outro-segredo", 7, model.RoleGestor, 3, 5)
    require.NoError(t, err)

    rec := doAuth(t, "Bearer "+at.Token)

    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
    at, err := utils.NewAccessToken(testSecret, 7, model.RoleGestor, 3, -5)
    require.NoError(t, err)

    rec := doAuth(t, "Bearer "+at.Token)

    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthInjectsClaims(t *testing.T) {
    at, err := utils.NewAccessToken(testSecret, 42, model.RoleOperador, 9, 5)
    require.NoError(t, err)

    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    req.Header.Set("Authorization", "Bearer "+at.Token)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    var gotID uint64
    var gotRole string
    h := JWTAuth(testSecret)(func(c echo.Context) error {
        gotID, _ = UserIDFrom(c)
        gotRole = RoleFrom(c)
        return c.NoContent(http.StatusOK)
    })
    require.NoError(t, h(c))

    assert.Equal(t, uint64(42), gotID)
    assert.Equal(t, model.RoleOperador, gotRole)
}

func doWithRole(t *testing.T, role, minimum string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if role != "" {
        c.Set("role", role)
    }

    h := RequireMinRole(minimum)(func(c echo.Context) error {
        return c.String(http.StatusOK, "ok")
    })
    require.NoError(t, h(c))
    return rec
}

func TestRequireMinRoleOrdering(t *testing.T) {
    assert.Equal(t, http.StatusOK, doWithRole(t, model.RoleAdmin, model.RoleAdmin).Code)
    assert.Equal(t, http.StatusOK, doWithRole(t, model.RoleAdmin, model.RoleOperador).Code)
    assert.Equal(t, http.StatusOK, doWithRole(t, model.RoleGestor, model.RoleGestor).Code)
    assert.Equal(t, http.StatusForbidden, doWithRole(t, model.RoleGestor, model.RoleAdmin).Code)
    assert.Equal(t, http.StatusForbidden, doWithRole(t, model.RoleOperador, model.RoleGestor).Code)
}

func TestRequireMinRoleFailsClosed(t *testing.T) {
    // Missing role, unknown role and unknown minimum all deny.
    assert.Equal(t, http.StatusForbidden, doWithRole(t, "", model.RoleOperador).Code)
    assert.Equal(t, http.StatusForbidden, doWithRole(t, "diretor", model.RoleOperador).Code)
    assert.Equal(t, http.StatusForbidden, doWithRole(t, model.RoleAdmin, "diretor").Code)
}

func TestUserIDFromRejectsJunk(t *testing.T) {
    e := echo.New()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

    _, ok := UserIDFrom(c)
    assert.False(t, ok)

    c.Set("user_id", "42")
    _, ok = UserIDFrom(c)
    assert.False(t, ok)

    c.Set("user_id", float64(0))
    _, ok = UserIDFrom(c)
    assert.False(t, ok)
}
