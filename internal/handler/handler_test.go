package handler

import (
    "errors"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/FBFE/gestao-indicadores-hospitalares/internal/ledger"
)

func TestHealth(t *testing.T) {
    e := echo.New()
    rec := httptest.NewRecorder()
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)

    require.NoError(t, Health(c))
    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLedgerErrorMapping(t *testing.T) {
    cases := []struct {
        err  error
        code int
    }{
        {fmt.Errorf("%w: valor_numerador", ledger.ErrMissingField), http.StatusBadRequest},
        {ledger.ErrAccessDenied, http.StatusForbidden},
        {fmt.Errorf("%w: indicador", ledger.ErrNotFound), http.StatusNotFound},
        {ledger.ErrDuplicatePeriod, http.StatusConflict},
        {errors.New("driver: bad connection"), http.StatusInternalServerError},
    }
    for _, tc := range cases {
        e := echo.New()
        rec := httptest.NewRecorder()
        c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/lancamentos", nil), rec)

        require.NoError(t, ledgerError(c, tc.err))
        assert.Equal(t, tc.code, rec.Code, tc.err.Error())
    }
}
