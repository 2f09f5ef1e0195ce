package main // Entry point package

import (
    "context"
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/FBFE/gestao-indicadores-hospitalares/internal/config"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/database"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/handler"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/identity"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/ledger"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/queue"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/repository"
    "github.com/FBFE/gestao-indicadores-hospitalares/internal/router"
)

func main() {
    // Load .env if present; in production the variables come from the
    // environment itself and a missing file is not an error.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    if err := database.EnsureSchema(ctx, db); err != nil {
        cancel()
        log.Fatalf("schema: %v", err)
    }
    cancel()

    // Redis is optional: when unavailable the client is nil and caching and
    // rate limiting are simply skipped.
    rdb := config.NewRedisClient()

    users := repository.NewUserRepo(db)
    units := repository.NewUnitRepo(db)
    indicadores := repository.NewIndicatorRepo(db)
    lancamentos := repository.NewLancamentoRepo(db)
    tokens := repository.NewTokenRepo(db)

    ident := identity.NewService(users, units, cfg.BcryptCost)
    led := ledger.NewService(ident, lancamentos, indicadores, units)

    authH := handler.NewAuthHandler(cfg, ident, users, tokens)
    catalogH := handler.NewCatalogHandler(ident, users, units, indicadores)
    ledgerH := handler.NewLancamentoHandler(led, users)

    // Background consumer that turns broker events into the audit log.
    go queue.StartAuditConsumer()

    e := echo.New()
    router.RegisterRoutes(e, router.Deps{
        Cfg:     &cfg,
        Redis:   rdb,
        Auth:    authH,
        Catalog: catalogH,
        Ledger:  ledgerH,
    })

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
