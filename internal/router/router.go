// Package router wires every HTTP route to its handler and middleware chain.
package router

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/FBFE/gestao-indicadores-hospitalares/internal/config"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/handler"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/middleware"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
)

// Deps carries everything RegisterRoutes needs to mount the API.
type Deps struct {
    Cfg     *config.Config
    Redis   *redis.Client
    Auth    *handler.AuthHandler
    Catalog *handler.CatalogHandler
    Ledger  *handler.LancamentoHandler
}

// RegisterRoutes mounts the public and protected route groups on e.
func RegisterRoutes(e *echo.Echo, d Deps) {
    e.GET("/healthz", handler.Health)

    // Public authentication endpoints. Login is rate limited per client IP
    // so credential stuffing cannot hammer bcrypt.
    auth := e.Group("/v1/auth")
    auth.POST("/register", d.Auth.Register)
    auth.POST("/login", d.Auth.Login,
        middleware.RateLimitByIP(d.Redis, d.Cfg.LoginRateLimit, time.Duration(d.Cfg.LoginRateWindow)*time.Second))
    auth.POST("/refresh", d.Auth.Refresh)
    auth.POST("/logout", d.Auth.Logout)

    // Everything below requires a valid access token.
    v1 := e.Group("/v1", middleware.JWTAuth(d.Cfg.JWTSecret))

    v1.GET("/me", d.Auth.Me)

    // Reference data changes rarely, so GETs are served from cache.
    cached := middleware.CacheGET(d.Redis, time.Duration(d.Cfg.CatalogCacheTTL)*time.Second)
    v1.GET("/unidades", d.Catalog.ListUnits, cached)
    v1.POST("/unidades", d.Catalog.CreateUnit, middleware.RequireMinRole(model.RoleAdmin))
    v1.GET("/indicadores", d.Catalog.ListIndicators, cached)
    v1.POST("/indicadores", d.Catalog.CreateIndicator, middleware.RequireMinRole(model.RoleGestor))

    v1.GET("/lancamentos", d.Ledger.List)
    v1.POST("/lancamentos", d.Ledger.Create)
    v1.POST("/lancamentos/lote", d.Ledger.CreateBatch)
    v1.PUT("/lancamentos/:id", d.Ledger.Update)

    admin := v1.Group("/admin", middleware.RequireMinRole(model.RoleAdmin))
    admin.GET("/usuarios", d.Auth.ListUsers)
}
