package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/noteful-api/internal/apperror"
    "github.com/iliyamo/noteful-api/internal/repository"
)

// ErrorHandler renders every error a handler or middleware returns.  An
// *apperror.Error is written as-is; Echo's own errors (unmatched route,
// wrong method, oversized body) are mapped onto the same JSON shape; any
// other error is logged and reported as a bare 500.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }
        body := toAPIError(err)
        if body.Code >= http.StatusInternalServerError {
            log.Error().Err(err).
                Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
                Str("method", c.Request().Method).
                Str("path", c.Request().URL.Path).
                Msg("internal error")
        }
        if c.Request().Method == http.MethodHead {
            err = c.NoContent(body.Code)
        } else {
            err = c.JSON(body.Code, body)
        }
        if err != nil {
            log.Error().Err(err).Msg("write error response")
        }
    }
}

func toAPIError(err error) *apperror.Error {
    var ae *apperror.Error
    if errors.As(err, &ae) {
        return ae
    }
    var he *echo.HTTPError
    if errors.As(err, &he) {
        switch {
        case he.Code == http.StatusNotFound:
            return apperror.NotFound()
        case he.Code == http.StatusUnauthorized:
            return apperror.Unauthorized()
        case he.Code == http.StatusBadRequest:
            return apperror.BadRequest()
        case he.Code < http.StatusInternalServerError:
            return &apperror.Error{Code: he.Code, Reason: "HTTPError", Message: http.StatusText(he.Code)}
        }
    }
    return apperror.Internal()
}

// resourceError translates repository sentinels for a resource handler.
// Anything unrecognised is returned unchanged and becomes a 500.
func resourceError(err error, conflict string) error {
    var ref *repository.ReferenceError
    switch {
    case errors.Is(err, repository.ErrNotFound):
        return apperror.NotFound()
    case errors.Is(err, repository.ErrDuplicate):
        return apperror.Conflict(conflict)
    case errors.As(err, &ref):
        if ref.Field == "tags" {
            return apperror.Validation(http.StatusBadRequest, "The `tags` array contains an invalid `id`", ref.Field)
        }
        return apperror.Validation(http.StatusBadRequest, "The `"+ref.Field+"` is not valid", ref.Field)
    }
    return err
}
