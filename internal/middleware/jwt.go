package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "strings" // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/noteful-api/internal/apperror" // structured 401 body
    "github.com/iliyamo/noteful-api/internal/utils"    // token claims
)

// Context keys set by JWTAuth.
const (
    CtxUserID   = "user_id"
    CtxUsername = "username"
)

// TokenVerifier validates a raw bearer token.  *service.Authenticator
// satisfies it.
type TokenVerifier interface {
    Verify(raw string) (*utils.Claims, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer token and
// injects the caller's user id and username into the request context.  It
// is stateless: nothing is looked up in the store.  A missing, malformed,
// expired or badly signed token is rejected with 401 before the handler
// runs.
func JWTAuth(v TokenVerifier) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            scheme, raw, ok := strings.Cut(auth, " ")
            if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
                return apperror.Unauthorized()
            }
            claims, err := v.Verify(strings.TrimSpace(raw))
            if err != nil {
                return apperror.Unauthorized()
            }
            c.Set(CtxUserID, claims.User.ID)
            c.Set(CtxUsername, claims.User.Username)
            return next(c)
        }
    }
}
