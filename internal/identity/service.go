package identity

import (
    "context"
    "errors"
    "log"
    "strings"
    "time"

    "github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/repository"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/utils"
)

// UserStore is the slice of the user repository the identity service needs.
type UserStore interface {
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
    Create(ctx context.Context, u *model.User) error
    TouchLastLogin(ctx context.Context, id uint64, at time.Time) error
}

// UnitStore resolves unit visibility for a role.
type UnitStore interface {
    GetByID(ctx context.Context, id uint64) (model.Unit, error)
    ListActive(ctx context.Context) ([]model.Unit, error)
}

// roleLevel orders the roles. Anything unknown maps to 0 and therefore
// fails every RequireRole check.
var roleLevel = map[string]int{
    model.RoleOperador: 1,
    model.RoleGestor:   2,
    model.RoleAdmin:    3,
}

// Service bundles the stores and the bcrypt cost used at registration.
type Service struct {
    Users      UserStore
    Units      UnitStore
    BcryptCost int
}

func NewService(users UserStore, units UnitStore, bcryptCost int) *Service {
    return &Service{Users: users, Units: units, BcryptCost: bcryptCost}
}

// Authenticate verifies email/password and returns the user. Lookup is by
// normalized (lower-cased, trimmed) email. Unknown users, wrong passwords
// and inactive accounts all yield ErrInvalidCredentials. On success the
// ultimo_login timestamp is updated; a failure to record it is logged but
// does not fail the login.
func (s *Service) Authenticate(ctx context.Context, email, password string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    u, err := s.Users.GetByEmail(ctx, email)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return model.User{}, ErrInvalidCredentials
        }
        return model.User{}, err
    }
    if !utils.VerifyPassword(u.PasswordHash, password) || !u.Ativo {
        return model.User{}, ErrInvalidCredentials
    }
    now := time.Now().UTC()
    if err := s.Users.TouchLastLogin(ctx, u.ID, now); err != nil {
        log.Printf("identity: touch last login for user %d failed: %v", u.ID, err)
    } else {
        u.UltimoLogin = &now
    }
    return u, nil
}

// Register creates a new operador account bound to an existing active unit.
// Self-registration never grants gestor or admin; those are provisioned by
// an admin. The unit must exist and be active.
func (s *Service) Register(ctx context.Context, nome, email, password string, unidadeID uint64) (model.User, error) {
    unit, err := s.Units.GetByID(ctx, unidadeID)
    if err != nil {
        return model.User{}, err
    }
    if !unit.Ativo {
        return model.User{}, repository.ErrNotFound
    }
    hash, err := utils.HashPassword(password, s.BcryptCost)
    if err != nil {
        return model.User{}, err
    }
    u := model.User{
        Nome:         strings.TrimSpace(nome),
        Email:        strings.ToLower(strings.TrimSpace(email)),
        PasswordHash: hash,
        Role:         model.RoleOperador,
        UnidadeID:    unidadeID,
    }
    if err := s.Users.Create(ctx, &u); err != nil {
        return model.User{}, err
    }
    return u, nil
}

// CanAccessUnit reports whether the user may read or write data of the
// given unit. Gestor and admin see everything; an operador only their home
// unit. Role decides scope, never the other way around.
func (s *Service) CanAccessUnit(u model.User, unidadeID uint64) bool {
    if u.Role == model.RoleAdmin || u.Role == model.RoleGestor {
        return true
    }
    return u.UnidadeID == unidadeID
}

// AccessibleUnits returns the units the user may see: all active units for
// gestor/admin, exactly the home unit otherwise.
func (s *Service) AccessibleUnits(ctx context.Context, u model.User) ([]model.Unit, error) {
    if u.Role == model.RoleAdmin || u.Role == model.RoleGestor {
        return s.Units.ListActive(ctx)
    }
    home, err := s.Units.GetByID(ctx, u.UnidadeID)
    if err != nil {
        return nil, err
    }
    return []model.Unit{home}, nil
}

// RequireRole fails with ErrInsufficientPermission when the user's role is
// below the minimum in the operador < gestor < admin ordering.
func (s *Service) RequireRole(u model.User, minimum string) error {
    need, ok := roleLevel[minimum]
    if !ok {
        // An unknown minimum is a programming error; fail closed.
        return ErrInsufficientPermission
    }
    if roleLevel[u.Role] < need {
        return ErrInsufficientPermission
    }
    return nil
}

// RoleLevel exposes the ordering for middleware that gates routes by role
// before a full user record is loaded.
func RoleLevel(role string) int { return roleLevel[role] }
