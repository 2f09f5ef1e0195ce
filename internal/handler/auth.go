package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/FBFE/gestao-indicadores-hospitalares/internal/config"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/identity"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/middleware"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/repository"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg      config.Config
    Identity *identity.Service
    Users    *repository.UserRepo
    Tokens   *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, ident *identity.Service, users *repository.UserRepo, tokens *repository.TokenRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Identity: ident, Users: users, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
    Nome      string `json:"nome"`
    Email     string `json:"email"`
    Password  string `json:"senha"`
    UnidadeID uint64 `json:"unidade_id"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"senha"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}
type logoutReq struct {
    RefreshToken string `json:"refresh_token"`
    TodasSessoes bool   `json:"todas_sessoes"` // revoke every session of the user
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID          uint64     `json:"id"`
    Nome        string     `json:"nome"`
    Email       string     `json:"email"`
    Role        string     `json:"role"`
    UnidadeID   uint64     `json:"unidade_id"`
    UltimoLogin *time.Time `json:"ultimo_login,omitempty"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

func toUserPart(u model.User) userPart {
    return userPart{ID: u.ID, Nome: u.Nome, Email: u.Email, Role: u.Role,
        UnidadeID: u.UnidadeID, UltimoLogin: u.UltimoLogin}
}

// issuePair mints an access/refresh pair for u and persists the refresh hash.
func (h *AuthHandler) issuePair(ctx context.Context, u model.User) (authResp, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.UnidadeID, h.Cfg.AccessTTLMin)
    if err != nil {
        return authResp{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return authResp{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, err
    }
    return authResp{
        User:    toUserPart(u),
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    }, nil
}

// Register creates an operador account bound to a unit and returns tokens
// immediately.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if strings.TrimSpace(req.Nome) == "" || req.Email == "" || req.Password == "" || req.UnidadeID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "nome, email, senha e unidade_id são obrigatórios"})
    }
    if !strings.Contains(req.Email, "@") {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email inválido"})
    }
    if len(req.Password) < 6 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "senha deve ter pelo menos 6 caracteres"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Identity.Register(ctx, req.Nome, req.Email, req.Password, req.UnidadeID)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrEmailExists):
            return c.JSON(http.StatusConflict, echo.Map{"error": "email já cadastrado"})
        case errors.Is(err, repository.ErrNotFound):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unidade não encontrada"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    resp, err := h.issuePair(ctx, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(req.Email) == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email e senha são obrigatórios"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Identity.Authenticate(ctx, req.Email, req.Password)
    if err != nil {
        if errors.Is(err, identity.ErrInvalidCredentials) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "credenciais inválidas"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
    }

    resp, err := h.issuePair(ctx, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    return c.JSON(http.StatusOK, resp)
}

// Refresh validates a refresh token by hash, revokes it and issues a new
// pair (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    _ = h.Tokens.RevokeByHash(ctx, hash)

    u, err := h.Users.GetByID(ctx, userID)
    if err != nil || !u.Ativo {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }

    resp, err := h.issuePair(ctx, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    return c.JSON(http.StatusOK, resp)
}

// Logout revokes the presented refresh token, ending that session. With
// todas_sessoes set it revokes every active token of the owning user
// (logout everywhere). The token must still be valid; an unknown or
// already-revoked token is a 401.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req logoutReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    }
    if req.TodasSessoes {
        err = h.Tokens.RevokeAllForUser(ctx, userID)
    } else {
        err = h.Tokens.RevokeByHash(ctx, hash)
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, ok := middleware.UserIDFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    return c.JSON(http.StatusOK, toUserPart(u))
}

// ListUsers handles GET /v1/admin/usuarios. The route is gated to admin by
// middleware; the handler re-checks against the loaded record so a stale
// token cannot outlive a demotion.
func (h *AuthHandler) ListUsers(c echo.Context) error {
    uid, ok := middleware.UserIDFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    caller, err := h.Users.GetByID(ctx, uid)
    if err != nil || !caller.Ativo {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if err := h.Identity.RequireRole(caller, model.RoleAdmin); err != nil {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "permissão insuficiente"})
    }
    users, err := h.Users.ListAll(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]userPart, 0, len(users))
    for _, u := range users {
        out = append(out, toUserPart(u))
    }
    return c.JSON(http.StatusOK, echo.Map{"usuarios": out})
}
