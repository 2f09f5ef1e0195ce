package ledger

import (
    "context"
    "errors"
    "fmt"

    "github.com/FBFE/gestao-indicadores-hospitalares/internal/identity"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/repository"
)

// LancamentoStore is the persistence capability the ledger needs. The MySQL
// implementation lives in internal/repository; tests plug in an in-memory
// fake. Batch creation must be all-or-nothing and the uniqueness of the
// (indicador, unidade, ano, mes) tuple must be enforced by the store itself
// (a unique constraint), not merely checked before insert.
type LancamentoStore interface {
    Create(ctx context.Context, l *model.Lancamento) error
    CreateBatch(ctx context.Context, ls []*model.Lancamento) error
    GetByID(ctx context.Context, id uint64) (model.Lancamento, error)
    UpdateValues(ctx context.Context, id uint64, num, den float64, obs *string) (model.Lancamento, error)
    List(ctx context.Context, f repository.ListFilter) ([]model.Lancamento, error)
}

// IndicatorStore supplies the catalog consulted during validation and
// aggregation.
type IndicatorStore interface {
    GetByID(ctx context.Context, id uint64) (model.Indicator, error)
    ListActive(ctx context.Context) ([]model.Indicator, error)
}

// UnitStore resolves unit existence and names for the views.
type UnitStore interface {
    GetByID(ctx context.Context, id uint64) (model.Unit, error)
    ListActive(ctx context.Context) ([]model.Unit, error)
}

// Service wires the stores together with the identity rules.
type Service struct {
    Auth        *identity.Service
    Lancamentos LancamentoStore
    Indicadores IndicatorStore
    Unidades    UnitStore
}

func NewService(auth *identity.Service, ls LancamentoStore, is IndicatorStore, us UnitStore) *Service {
    return &Service{Auth: auth, Lancamentos: ls, Indicadores: is, Unidades: us}
}

// CreateInput carries one submission. Pointer fields distinguish "absent"
// from zero values so validation can name the missing field.
type CreateInput struct {
    IndicadorID uint64
    UnidadeID   uint64
    Ano         int
    Mes         int
    Numerador   *float64
    Denominador *float64
    Observacoes *string
}

// Create records one lançamento. Preconditions are checked in a fixed
// order: required fields, unit access, indicator existence, unit existence,
// period uniqueness. The uniqueness check ultimately rests on the storage
// unique key, which closes the check-then-insert race between concurrent
// writers.
func (s *Service) Create(ctx context.Context, user model.User, in CreateInput) (model.Lancamento, error) {
    l, err := s.validate(ctx, user, in)
    if err != nil {
        return model.Lancamento{}, err
    }
    if err := s.Lancamentos.Create(ctx, &l); err != nil {
        return model.Lancamento{}, mapStoreErr(err)
    }
    return l, nil
}

// CreateBatch records several lançamentos in one atomic write. Validation
// runs for every input before anything touches storage, and the store-level
// transaction guarantees no partial batch survives a failure.
func (s *Service) CreateBatch(ctx context.Context, user model.User, ins []CreateInput) ([]model.Lancamento, error) {
    if len(ins) == 0 {
        return nil, fmt.Errorf("%w: lancamentos", ErrMissingField)
    }
    batch := make([]*model.Lancamento, 0, len(ins))
    for _, in := range ins {
        l, err := s.validate(ctx, user, in)
        if err != nil {
            return nil, err
        }
        cp := l
        batch = append(batch, &cp)
    }
    if err := s.Lancamentos.CreateBatch(ctx, batch); err != nil {
        return nil, mapStoreErr(err)
    }
    out := make([]model.Lancamento, 0, len(batch))
    for _, l := range batch {
        out = append(out, *l)
    }
    return out, nil
}

// validate applies the create preconditions shared by Create and
// CreateBatch and builds the row to insert.
func (s *Service) validate(ctx context.Context, user model.User, in CreateInput) (model.Lancamento, error) {
    var zero model.Lancamento
    switch {
    case in.IndicadorID == 0:
        return zero, fmt.Errorf("%w: indicador_id", ErrMissingField)
    case in.UnidadeID == 0:
        return zero, fmt.Errorf("%w: unidade_id", ErrMissingField)
    case in.Ano == 0:
        return zero, fmt.Errorf("%w: ano", ErrMissingField)
    case in.Mes < 1 || in.Mes > 12:
        return zero, fmt.Errorf("%w: mes", ErrMissingField)
    case in.Numerador == nil:
        return zero, fmt.Errorf("%w: valor_numerador", ErrMissingField)
    case in.Denominador == nil:
        return zero, fmt.Errorf("%w: valor_denominador", ErrMissingField)
    }
    if !s.Auth.CanAccessUnit(user, in.UnidadeID) {
        return zero, ErrAccessDenied
    }
    ind, err := s.Indicadores.GetByID(ctx, in.IndicadorID)
    if err != nil {
        return zero, mapLookupErr(err, "indicador")
    }
    if !ind.Ativo {
        return zero, fmt.Errorf("%w: indicador", ErrNotFound)
    }
    unit, err := s.Unidades.GetByID(ctx, in.UnidadeID)
    if err != nil {
        return zero, mapLookupErr(err, "unidade")
    }
    if !unit.Ativo {
        return zero, fmt.Errorf("%w: unidade", ErrNotFound)
    }
    return model.Lancamento{
        IndicadorID:      in.IndicadorID,
        UnidadeID:        in.UnidadeID,
        UsuarioID:        user.ID,
        Ano:              in.Ano,
        Mes:              in.Mes,
        ValorNumerador:   *in.Numerador,
        ValorDenominador: *in.Denominador,
        Observacoes:      in.Observacoes,
    }, nil
}

// UpdatePatch carries the mutable fields of a lançamento. Nil fields keep
// their current value. Indicator, unit and period cannot be patched.
type UpdatePatch struct {
    Numerador   *float64
    Denominador *float64
    Observacoes *string
}

// Update modifies an existing lançamento. Gestor and admin may edit any
// record; an operador only their own, and only while they still have access
// to its unit.
func (s *Service) Update(ctx context.Context, user model.User, id uint64, patch UpdatePatch) (model.Lancamento, error) {
    cur, err := s.Lancamentos.GetByID(ctx, id)
    if err != nil {
        return model.Lancamento{}, mapLookupErr(err, "lancamento")
    }
    privileged := user.Role == model.RoleGestor || user.Role == model.RoleAdmin
    owner := cur.UsuarioID == user.ID && s.Auth.CanAccessUnit(user, cur.UnidadeID)
    if !privileged && !owner {
        return model.Lancamento{}, ErrAccessDenied
    }
    num := cur.ValorNumerador
    if patch.Numerador != nil {
        num = *patch.Numerador
    }
    den := cur.ValorDenominador
    if patch.Denominador != nil {
        den = *patch.Denominador
    }
    obs := cur.Observacoes
    if patch.Observacoes != nil {
        obs = patch.Observacoes
    }
    updated, err := s.Lancamentos.UpdateValues(ctx, id, num, den, obs)
    if err != nil {
        return model.Lancamento{}, mapStoreErr(err)
    }
    return updated, nil
}

// ListFilter narrows List. Ano is required; Mes and UnidadeID optional.
type ListFilter struct {
    Ano       int
    Mes       *int
    UnidadeID *uint64
}

// List returns lançamento views for a period. For an operador the unit
// filter is force-overridden to their home unit no matter what was
// requested: the scope clamp happens server side, the client filter is
// never trusted. Gestor/admin may pick a unit (after an access check) or
// omit it, in which case the aggregation engine combines all units into one
// row per indicator.
func (s *Service) List(ctx context.Context, user model.User, f ListFilter) ([]View, error) {
    if f.Ano == 0 {
        return nil, fmt.Errorf("%w: ano", ErrMissingField)
    }
    if user.Role == model.RoleOperador {
        home := user.UnidadeID
        f.UnidadeID = &home
    } else if f.UnidadeID != nil && !s.Auth.CanAccessUnit(user, *f.UnidadeID) {
        return nil, ErrAccessDenied
    }
    rows, err := s.Lancamentos.List(ctx, repository.ListFilter{
        Ano: f.Ano, Mes: f.Mes, UnidadeID: f.UnidadeID,
    })
    if err != nil {
        return nil, err
    }
    catalog, err := s.catalogByID(ctx)
    if err != nil {
        return nil, err
    }
    if f.UnidadeID == nil {
        return Aggregate(rows, catalog, f.Ano, f.Mes), nil
    }
    units, err := s.unitNamesByID(ctx)
    if err != nil {
        return nil, err
    }
    views := make([]View, 0, len(rows))
    for _, l := range rows {
        nome, ok := units[l.UnidadeID]
        if !ok {
            // The unit was deactivated after the row was written; its
            // name still belongs on the historical view.
            if u, err := s.Unidades.GetByID(ctx, l.UnidadeID); err == nil {
                nome = u.Nome
            }
            units[l.UnidadeID] = nome
        }
        views = append(views, rowView(l, catalog[l.IndicadorID], nome))
    }
    return views, nil
}

func (s *Service) catalogByID(ctx context.Context) (map[uint64]model.Indicator, error) {
    inds, err := s.Indicadores.ListActive(ctx)
    if err != nil {
        return nil, err
    }
    m := make(map[uint64]model.Indicator, len(inds))
    for _, in := range inds {
        m[in.ID] = in
    }
    return m, nil
}

func (s *Service) unitNamesByID(ctx context.Context) (map[uint64]string, error) {
    units, err := s.Unidades.ListActive(ctx)
    if err != nil {
        return nil, err
    }
    m := make(map[uint64]string, len(units))
    for _, u := range units {
        m[u.ID] = u.Nome
    }
    return m, nil
}

// mapLookupErr converts a repository miss into the ledger's ErrNotFound,
// tagging the entity that was missing. Other errors pass through untouched
// so storage faults stay recognizable.
func mapLookupErr(err error, entity string) error {
    if errors.Is(err, repository.ErrNotFound) {
        return fmt.Errorf("%w: %s", ErrNotFound, entity)
    }
    return err
}

// mapStoreErr converts a unique-key violation into ErrDuplicatePeriod.
func mapStoreErr(err error) error {
    if errors.Is(err, repository.ErrDuplicate) {
        return ErrDuplicatePeriod
    }
    return err
}
