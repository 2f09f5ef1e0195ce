package handler

// catalog.go serves the shared reference data: hospital units and the
// indicator catalog. Reads are open to any authenticated role (an
// operador's unit list is already scoped to their home unit); writes are
// gated to admin (units) and gestor/admin (indicators).

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/FBFE/gestao-indicadores-hospitalares/internal/identity"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/middleware"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/repository"
)

// CatalogHandler serves unidades and indicadores.
type CatalogHandler struct {
    Identity    *identity.Service
    Users       *repository.UserRepo
    Units       *repository.UnitRepo
    Indicadores *repository.IndicatorRepo
}

func NewCatalogHandler(ident *identity.Service, users *repository.UserRepo, units *repository.UnitRepo, inds *repository.IndicatorRepo) *CatalogHandler {
    return &CatalogHandler{Identity: ident, Users: users, Units: units, Indicadores: inds}
}

type unitResp struct {
    ID     uint64 `json:"id"`
    Nome   string `json:"nome"`
    Codigo string `json:"codigo"`
    Ativo  bool   `json:"ativo"`
}

type indicatorResp struct {
    ID               uint64   `json:"id"`
    Nome             string   `json:"nome"`
    Descricao        string   `json:"descricao"`
    Tipo             string   `json:"tipo"`
    UnidadeMedida    string   `json:"unidade_medida"`
    MetaMensal       *float64 `json:"meta_mensal"`
    LabelNumerador   string   `json:"label_numerador"`
    LabelDenominador string   `json:"label_denominador"`
}

// currentUser loads the full record behind the JWT. Mutating endpoints go
// through here so role changes and deactivations apply immediately.
func (h *CatalogHandler) currentUser(c echo.Context, ctx context.Context) (model.User, bool) {
    uid, ok := middleware.UserIDFrom(c)
    if !ok {
        return model.User{}, false
    }
    u, err := h.Users.GetByID(ctx, uid)
    if err != nil || !u.Ativo {
        return model.User{}, false
    }
    return u, true
}

// ListUnits handles GET /v1/unidades: the units the caller may see.
func (h *CatalogHandler) ListUnits(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    u, ok := h.currentUser(c, ctx)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    units, err := h.Identity.AccessibleUnits(ctx, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]unitResp, 0, len(units))
    for _, un := range units {
        out = append(out, unitResp{ID: un.ID, Nome: un.Nome, Codigo: un.Codigo, Ativo: un.Ativo})
    }
    return c.JSON(http.StatusOK, echo.Map{"unidades": out})
}

// CreateUnit handles POST /v1/unidades (admin only).
func (h *CatalogHandler) CreateUnit(c echo.Context) error {
    var body struct {
        Nome   string `json:"nome"`
        Codigo string `json:"codigo"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    body.Nome = strings.TrimSpace(body.Nome)
    body.Codigo = strings.TrimSpace(body.Codigo)
    if body.Nome == "" || body.Codigo == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "nome e codigo são obrigatórios"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    u, ok := h.currentUser(c, ctx)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if err := h.Identity.RequireRole(u, model.RoleAdmin); err != nil {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "permissão insuficiente"})
    }

    unit := model.Unit{Nome: body.Nome, Codigo: body.Codigo}
    if err := h.Units.Create(ctx, &unit); err != nil {
        if errors.Is(err, repository.ErrDuplicate) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "unidade já existe"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create unit failed"})
    }
    return c.JSON(http.StatusCreated, unitResp{ID: unit.ID, Nome: unit.Nome, Codigo: unit.Codigo, Ativo: unit.Ativo})
}

// ListIndicators handles GET /v1/indicadores: the active catalog with the
// metadata the frontend needs to render forms and dashboards.
func (h *CatalogHandler) ListIndicators(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    inds, err := h.Indicadores.ListActive(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]indicatorResp, 0, len(inds))
    for _, in := range inds {
        out = append(out, indicatorResp{
            ID: in.ID, Nome: in.Nome, Descricao: in.Descricao, Tipo: in.Tipo,
            UnidadeMedida: in.UnidadeMedida, MetaMensal: in.MetaMensal,
            LabelNumerador: in.LabelNumerador, LabelDenominador: in.LabelDenominador,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"indicadores": out})
}

// CreateIndicator handles POST /v1/indicadores (gestor or admin).
func (h *CatalogHandler) CreateIndicator(c echo.Context) error {
    var body struct {
        Nome             string   `json:"nome"`
        Descricao        string   `json:"descricao"`
        Tipo             string   `json:"tipo"`
        UnidadeMedida    string   `json:"unidade_medida"`
        MetaMensal       *float64 `json:"meta_mensal"`
        LabelNumerador   string   `json:"label_numerador"`
        LabelDenominador string   `json:"label_denominador"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(body.Nome) == "" || strings.TrimSpace(body.Tipo) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "nome e tipo são obrigatórios"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    u, ok := h.currentUser(c, ctx)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if err := h.Identity.RequireRole(u, model.RoleGestor); err != nil {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "permissão insuficiente"})
    }

    ind := model.Indicator{
        Nome:             strings.TrimSpace(body.Nome),
        Descricao:        strings.TrimSpace(body.Descricao),
        Tipo:             strings.TrimSpace(body.Tipo),
        UnidadeMedida:    strings.TrimSpace(body.UnidadeMedida),
        MetaMensal:       body.MetaMensal,
        LabelNumerador:   strings.TrimSpace(body.LabelNumerador),
        LabelDenominador: strings.TrimSpace(body.LabelDenominador),
    }
    if err := h.Indicadores.Create(ctx, &ind); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create indicator failed"})
    }
    return c.JSON(http.StatusCreated, indicatorResp{
        ID: ind.ID, Nome: ind.Nome, Descricao: ind.Descricao, Tipo: ind.Tipo,
        UnidadeMedida: ind.UnidadeMedida, MetaMensal: ind.MetaMensal,
        LabelNumerador: ind.LabelNumerador, LabelDenominador: ind.LabelDenominador,
    })
}
