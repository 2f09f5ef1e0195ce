package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/FBFE/gestao-indicadores-hospitalares/internal/ledger"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/middleware"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/queue"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/repository"
    queue_publisher "github.com/FBFE/gestao-indicadores-hospitalares/internal/service"
)

// LancamentoHandler exposes the ledger over HTTP.
type LancamentoHandler struct {
    Ledger *ledger.Service
    Users  *repository.UserRepo
}

func NewLancamentoHandler(led *ledger.Service, users *repository.UserRepo) *LancamentoHandler {
    return &LancamentoHandler{Ledger: led, Users: users}
}

// ----- DTOs -----

type lancamentoReq struct {
    IndicadorID uint64   `json:"indicador_id"`
    UnidadeID   uint64   `json:"unidade_id"`
    Ano         int      `json:"ano"`
    Mes         int      `json:"mes"`
    Numerador   *float64 `json:"valor_numerador"`
    Denominador *float64 `json:"valor_denominador"`
    Observacoes *string  `json:"observacoes"`
}

type lancamentoBatchReq struct {
    Lancamentos []lancamentoReq `json:"lancamentos"`
}

type lancamentoResp struct {
    ID               uint64    `json:"id"`
    IndicadorID      uint64    `json:"indicador_id"`
    UnidadeID        uint64    `json:"unidade_id"`
    UsuarioID        uint64    `json:"usuario_id"`
    Ano              int       `json:"ano"`
    Mes              int       `json:"mes"`
    ValorNumerador   float64   `json:"valor_numerador"`
    ValorDenominador float64   `json:"valor_denominador"`
    Observacoes      *string   `json:"observacoes,omitempty"`
    CriadoEm         time.Time `json:"criado_em"`
    AtualizadoEm     time.Time `json:"atualizado_em"`
}

func toLancamentoResp(l model.Lancamento) lancamentoResp {
    return lancamentoResp{
        ID: l.ID, IndicadorID: l.IndicadorID, UnidadeID: l.UnidadeID,
        UsuarioID: l.UsuarioID, Ano: l.Ano, Mes: l.Mes,
        ValorNumerador: l.ValorNumerador, ValorDenominador: l.ValorDenominador,
        Observacoes: l.Observacoes, CriadoEm: l.CriadoEm, AtualizadoEm: l.AtualizadoEm,
    }
}

func toCreateInput(r lancamentoReq) ledger.CreateInput {
    return ledger.CreateInput{
        IndicadorID: r.IndicadorID, UnidadeID: r.UnidadeID,
        Ano: r.Ano, Mes: r.Mes,
        Numerador: r.Numerador, Denominador: r.Denominador,
        Observacoes: r.Observacoes,
    }
}

// currentUser resolves the full user record behind the JWT.
func (h *LancamentoHandler) currentUser(c echo.Context, ctx context.Context) (model.User, bool) {
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

// ledgerError maps the ledger's sentinel errors onto HTTP statuses. The
// expected, user-correctable conditions (duplicate period, denied unit)
// must never collapse into a 500.
func ledgerError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, ledger.ErrMissingField):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, ledger.ErrAccessDenied):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "acesso negado à unidade"})
    case errors.Is(err, ledger.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, ledger.ErrDuplicatePeriod):
        return c.JSON(http.StatusConflict, echo.Map{"error": "já existe lançamento para este período"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "erro interno"})
}

// publish emits the audit event for a recorded lançamento. Failures are
// swallowed: the write already committed and the audit trail is advisory.
func (h *LancamentoHandler) publish(ctx context.Context, u model.User, l model.Lancamento, acao string) {
    ev := queue.LancamentoRecordedEvent{
        LancamentoID: l.ID,
        Acao:         acao,
        IndicadorID:  l.IndicadorID,
        UnidadeID:    l.UnidadeID,
        UsuarioID:    u.ID,
        UsuarioEmail: u.Email,
        Ano:          l.Ano,
        Mes:          l.Mes,
        Numerador:    l.ValorNumerador,
        Denominador:  l.ValorDenominador,
        RecordedAt:   time.Now().UTC().Format(time.RFC3339),
    }
    if ind, err := h.Ledger.Indicadores.GetByID(ctx, l.IndicadorID); err == nil {
        ev.IndicadorNome = ind.Nome
    }
    if un, err := h.Ledger.Unidades.GetByID(ctx, l.UnidadeID); err == nil {
        ev.UnidadeNome = un.Nome
    }
    _ = queue_publisher.PublishLancamentoRecorded(ctx, ev)
}

// Create handles POST /v1/lancamentos.
func (h *LancamentoHandler) Create(c echo.Context) error {
    var req lancamentoReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    u, ok := h.currentUser(c, ctx)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    l, err := h.Ledger.Create(ctx, u, toCreateInput(req))
    if err != nil {
        return ledgerError(c, err)
    }
    h.publish(ctx, u, l, queue.ActionCreated)
    return c.JSON(http.StatusCreated, toLancamentoResp(l))
}

// CreateBatch handles POST /v1/lancamentos/lote. The whole batch commits or
// none of it does.
func (h *LancamentoHandler) CreateBatch(c echo.Context) error {
    var req lancamentoBatchReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if len(req.Lancamentos) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "nenhum indicador foi preenchido"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()
    u, ok := h.currentUser(c, ctx)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ins := make([]ledger.CreateInput, 0, len(req.Lancamentos))
    for _, r := range req.Lancamentos {
        ins = append(ins, toCreateInput(r))
    }
    created, err := h.Ledger.CreateBatch(ctx, u, ins)
    if err != nil {
        return ledgerError(c, err)
    }
    for _, l := range created {
        h.publish(ctx, u, l, queue.ActionCreated)
    }
    out := make([]lancamentoResp, 0, len(created))
    for _, l := range created {
        out = append(out, toLancamentoResp(l))
    }
    return c.JSON(http.StatusCreated, echo.Map{"lancamentos": out})
}

// Update handles PUT /v1/lancamentos/:id. Only values and notes are
// mutable; the period and references are fixed at creation.
func (h *LancamentoHandler) Update(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var body struct {
        Numerador   *float64 `json:"valor_numerador"`
        Denominador *float64 `json:"valor_denominador"`
        Observacoes *string  `json:"observacoes"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    u, ok := h.currentUser(c, ctx)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    l, err := h.Ledger.Update(ctx, u, id, ledger.UpdatePatch{
        Numerador: body.Numerador, Denominador: body.Denominador, Observacoes: body.Observacoes,
    })
    if err != nil {
        return ledgerError(c, err)
    }
    h.publish(ctx, u, l, queue.ActionUpdated)
    return c.JSON(http.StatusOK, toLancamentoResp(l))
}

// List handles GET /v1/lancamentos?ano=&mes=&unidade_id=. Without a unit
// filter gestor/admin receive one aggregated row per indicator; an
// operador is always clamped to their home unit.
func (h *LancamentoHandler) List(c echo.Context) error {
    ano, err := strconv.Atoi(c.QueryParam("ano"))
    if err != nil || ano == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ano é obrigatório"})
    }
    var f ledger.ListFilter
    f.Ano = ano
    if s := c.QueryParam("mes"); s != "" {
        mes, err := strconv.Atoi(s)
        if err != nil || mes < 1 || mes > 12 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "mes inválido"})
        }
        f.Mes = &mes
    }
    if s := c.QueryParam("unidade_id"); s != "" {
        uid, err := strconv.ParseUint(s, 10, 64)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unidade_id inválido"})
        }
        f.UnidadeID = &uid
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    u, ok := h.currentUser(c, ctx)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    views, err := h.Ledger.List(ctx, u, f)
    if err != nil {
        return ledgerError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"lancamentos": views})
}
