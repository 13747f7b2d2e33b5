package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                              // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp" // prometheus scrape endpoint

	"github.com/iliyamo/noteful-api/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/noteful-api/internal/middleware" // import middleware for JWT authentication
)

// RegisterRoutes registers routes that do not require authentication and
// are not part of the API: health check and metrics.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the account endpoints.  Registration and login
// are open; profile updates require a valid token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, v middleware.TokenVerifier) {
	g := e.Group("/api")
	g.POST("/users", a.Register)
	g.POST("/login", a.Login)
	g.PUT("/users/:id", a.UpdateProfile, middleware.JWTAuth(v))
}
