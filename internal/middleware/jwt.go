package middleware // middleware contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the subject, role and home-unit claims into the request
// context. The provided secret must match the one used when issuing
// tokens. Handlers behind this middleware read the authenticated identity
// via c.Get("user_id"), c.Get("role") and c.Get("unidade_id").
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header is "Bearer <jwt>"; anything else is 401.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // The key callback pins the signing method to HMAC; a token
            // signed with anything else is rejected before verification.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            // Numeric JSON claims decode as float64; conversion to uint64
            // is left to downstream consumers via the helpers below.
            c.Set("user_id", claims["sub"])
            c.Set("role", claims["role"])
            c.Set("unidade_id", claims["unidade_id"])
            return next(c)
        }
    }
}

// UserIDFrom extracts the authenticated user ID stored by JWTAuth. The
// boolean is false when the context carries no usable identity.
func UserIDFrom(c echo.Context) (uint64, bool) {
    switch v := c.Get("user_id").(type) {
    case float64:
        if v > 0 {
            return uint64(v), true
        }
    case uint64:
        if v > 0 {
            return v, true
        }
    }
    return 0, false
}

// RoleFrom extracts the role claim stored by JWTAuth.
func RoleFrom(c echo.Context) string {
    if r, ok := c.Get("role").(string); ok {
        return r
    }
    return ""
}

// UnidadeIDFrom extracts the home-unit claim stored by JWTAuth.
func UnidadeIDFrom(c echo.Context) (uint64, bool) {
    switch v := c.Get("unidade_id").(type) {
    case float64:
        if v > 0 {
            return uint64(v), true
        }
    case uint64:
        if v > 0 {
            return v, true
        }
    }
    return 0, false
}
