package identity

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/repository"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/utils"
)

type fakeUserStore struct {
    byEmail  map[string]model.User
    touchErr error
    touched  []uint64
    nextID   uint64
}

func newFakeUserStore() *fakeUserStore {
    return &fakeUserStore{byEmail: map[string]model.User{}, nextID: 1}
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
    u, ok := f.byEmail[email]
    if !ok {
        return model.User{}, repository.ErrNotFound
    }
    return u, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
    for _, u := range f.byEmail {
        if u.ID == id {
            return u, nil
        }
    }
    return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
    if _, exists := f.byEmail[u.Email]; exists {
        return repository.ErrEmailExists
    }
    u.ID = f.nextID
    f.nextID++
    f.byEmail[u.Email] = *u
    return nil
}

func (f *fakeUserStore) TouchLastLogin(_ context.Context, id uint64, _ time.Time) error {
    if f.touchErr != nil {
        return f.touchErr
    }
    f.touched = append(f.touched, id)
    return nil
}

type fakeUnitStore struct {
    byID map[uint64]model.Unit
}

func (f *fakeUnitStore) GetByID(_ context.Context, id uint64) (model.Unit, error) {
    u, ok := f.byID[id]
    if !ok {
        return model.Unit{}, repository.ErrNotFound
    }
    return u, nil
}

func (f *fakeUnitStore) ListActive(_ context.Context) ([]model.Unit, error) {
    var out []model.Unit
    for _, u := range f.byID {
        if u.Ativo {
            out = append(out, u)
        }
    }
    return out, nil
}

const testPassword = "senha-forte-123"

func newTestIdentity(t *testing.T) (*Service, *fakeUserStore, *fakeUnitStore) {
    t.Helper()
    users := newFakeUserStore()
    units := &fakeUnitStore{byID: map[uint64]model.Unit{
        10: {ID: 10, Nome: "UTI Adulto", Ativo: true},
        12: {ID: 12, Nome: "Ala Desativada", Ativo: false},
    }}
    hash, err := utils.HashPassword(testPassword, 4)
    require.NoError(t, err)
    users.byEmail["ana@hospital.org"] = model.User{
        ID: 1, Nome: "Ana", Email: "ana@hospital.org",
        PasswordHash: hash, Role: model.RoleOperador, UnidadeID: 10, Ativo: true,
    }
    users.byEmail["inativo@hospital.org"] = model.User{
        ID: 2, Email: "inativo@hospital.org",
        PasswordHash: hash, Role: model.RoleOperador, UnidadeID: 10, Ativo: false,
    }
    users.nextID = 3
    return NewService(users, units, 4), users, units
}

func TestAuthenticateSuccess(t *testing.T) {
    svc, users, _ := newTestIdentity(t)

    u, err := svc.Authenticate(context.Background(), "ana@hospital.org", testPassword)

    require.NoError(t, err)
    assert.Equal(t, uint64(1), u.ID)
    assert.NotNil(t, u.UltimoLogin)
    assert.Equal(t, []uint64{1}, users.touched)
}

func TestAuthenticateNormalizesEmail(t *testing.T) {
    svc, _, _ := newTestIdentity(t)

    u, err := svc.Authenticate(context.Background(), "  Ana@Hospital.ORG ", testPassword)

    require.NoError(t, err)
    assert.Equal(t, uint64(1), u.ID)
}

func TestAuthenticateRejections(t *testing.T) {
    svc, _, _ := newTestIdentity(t)
    ctx := context.Background()

    _, err := svc.Authenticate(ctx, "ninguem@hospital.org", testPassword)
    assert.ErrorIs(t, err, ErrInvalidCredentials)

    _, err = svc.Authenticate(ctx, "ana@hospital.org", "senha-errada")
    assert.ErrorIs(t, err, ErrInvalidCredentials)

    _, err = svc.Authenticate(ctx, "inativo@hospital.org", testPassword)
    assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateSurvivesTouchFailure(t *testing.T) {
    svc, users, _ := newTestIdentity(t)
    users.touchErr = context.DeadlineExceeded

    u, err := svc.Authenticate(context.Background(), "ana@hospital.org", testPassword)

    require.NoError(t, err)
    assert.Nil(t, u.UltimoLogin)
}

func TestRegisterAlwaysGrantsOperador(t *testing.T) {
    svc, _, _ := newTestIdentity(t)

    u, err := svc.Register(context.Background(), "  Bruno ", " Bruno@Hospital.org ", "outra-senha", 10)

    require.NoError(t, err)
    assert.Equal(t, model.RoleOperador, u.Role)
    assert.Equal(t, "Bruno", u.Nome)
    assert.Equal(t, "bruno@hospital.org", u.Email)
    assert.Equal(t, uint64(10), u.UnidadeID)
    assert.True(t, utils.VerifyPassword(u.PasswordHash, "outra-senha"))
}

func TestRegisterRequiresActiveUnit(t *testing.T) {
    svc, _, _ := newTestIdentity(t)
    ctx := context.Background()

    _, err := svc.Register(ctx, "Bruno", "bruno@hospital.org", "outra-senha", 99)
    assert.ErrorIs(t, err, repository.ErrNotFound)

    _, err = svc.Register(ctx, "Bruno", "bruno@hospital.org", "outra-senha", 12)
    assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRegisterDuplicateEmail(t *testing.T) {
    svc, _, _ := newTestIdentity(t)

    _, err := svc.Register(context.Background(), "Outra Ana", "ana@hospital.org", "outra-senha", 10)

    assert.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestCanAccessUnit(t *testing.T) {
    svc, _, _ := newTestIdentity(t)

    operador := model.User{Role: model.RoleOperador, UnidadeID: 10}
    assert.True(t, svc.CanAccessUnit(operador, 10))
    assert.False(t, svc.CanAccessUnit(operador, 11))

    for _, role := range []string{model.RoleGestor, model.RoleAdmin} {
        u := model.User{Role: role, UnidadeID: 10}
        assert.True(t, svc.CanAccessUnit(u, 11), role)
    }
}

func TestAccessibleUnits(t *testing.T) {
    svc, _, _ := newTestIdentity(t)
    ctx := context.Background()

    operador := model.User{Role: model.RoleOperador, UnidadeID: 10}
    units, err := svc.AccessibleUnits(ctx, operador)
    require.NoError(t, err)
    require.Len(t, units, 1)
    assert.Equal(t, uint64(10), units[0].ID)

    admin := model.User{Role: model.RoleAdmin}
    units, err = svc.AccessibleUnits(ctx, admin)
    require.NoError(t, err)
    // Inactive units are never listed.
    assert.Len(t, units, 1)
}

func TestRequireRoleOrdering(t *testing.T) {
    svc, _, _ := newTestIdentity(t)

    operador := model.User{Role: model.RoleOperador}
    gestor := model.User{Role: model.RoleGestor}
    admin := model.User{Role: model.RoleAdmin}

    assert.NoError(t, svc.RequireRole(operador, model.RoleOperador))
    assert.ErrorIs(t, svc.RequireRole(operador, model.RoleGestor), ErrInsufficientPermission)
    assert.NoError(t, svc.RequireRole(gestor, model.RoleGestor))
    assert.ErrorIs(t, svc.RequireRole(gestor, model.RoleAdmin), ErrInsufficientPermission)
    assert.NoError(t, svc.RequireRole(admin, model.RoleOperador))
}

func TestRequireRoleFailsClosed(t *testing.T) {
    svc, _, _ := newTestIdentity(t)

    // Unknown roles and unknown minimums both deny.
    assert.ErrorIs(t, svc.RequireRole(model.User{Role: "diretor"}, model.RoleOperador), ErrInsufficientPermission)
    assert.ErrorIs(t, svc.RequireRole(model.User{Role: model.RoleAdmin}, "diretor"), ErrInsufficientPermission)
}
