package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/FBFE/gestao-indicadores-hospitalares/internal/identity"
)

// RequireMinRole returns a middleware enforcing that the authenticated
// user's role sits at or above the given minimum in the strict
// operador < gestor < admin ordering. It assumes JWTAuth has already
// stored the role claim in the context. A missing or unknown role fails
// closed with 403.
func RequireMinRole(minimum string) echo.MiddlewareFunc {
    need := identity.RoleLevel(minimum)
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role := RoleFrom(c)
            if need == 0 || identity.RoleLevel(role) < need {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "permissão insuficiente"})
            }
            return next(c)
        }
    }
}
