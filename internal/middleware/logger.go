package middleware

import (
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/noteful-api/internal/metrics"
)

// RequestLogger logs one line per request and records the HTTP metrics.
// Errors returned by the handler are rendered through c.Error first so the
// final status is known; the error is not passed further up.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            elapsed := time.Since(start)

            req, res := c.Request(), c.Response()
            route := c.Path()
            if route == "" {
                route = "unmatched"
            }
            metrics.ObserveHTTPRequest(req.Method, route, strconv.Itoa(res.Status), elapsed)

            ev := log.Info()
            if res.Status >= 500 {
                ev = log.Error()
            }
            ev.Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
                Str("method", req.Method).
                Str("path", req.URL.Path).
                Str("route", route).
                Int("status", res.Status).
                Dur("latency", elapsed).
                Str("user_id", UserID(c)).
                Msg("request")
            return nil
        }
    }
}
