package middleware

// identity.go provides accessors for the identity JWTAuth stores in the
// Echo context.

import "github.com/labstack/echo/v4"

// UserID returns the authenticated caller's id, or "" on routes that are
// not behind JWTAuth.
func UserID(c echo.Context) string {
    id, _ := c.Get(CtxUserID).(string)
    return id
}

// Username returns the authenticated caller's username, or "".
func Username(c echo.Context) string {
    name, _ := c.Get(CtxUsername).(string)
    return name
}
