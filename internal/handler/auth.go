package handler

import (
    "context"  // provides context with cancellation for DB calls
    "errors"   // sentinel matching
    "net/http" // HTTP status codes and primitives

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/noteful-api/internal/apperror"   // structured error bodies
    "github.com/iliyamo/noteful-api/internal/metrics"    // login outcome counters
    "github.com/iliyamo/noteful-api/internal/middleware" // caller identity
    "github.com/iliyamo/noteful-api/internal/model"      // user entity
    "github.com/iliyamo/noteful-api/internal/queue"      // activity events
    "github.com/iliyamo/noteful-api/internal/repository" // store sentinels
    "github.com/iliyamo/noteful-api/internal/service"    // authenticator and publisher
    "github.com/iliyamo/noteful-api/internal/validator"  // request validation
)

// AuthHandler bundles dependencies for the user and login endpoints.
type AuthHandler struct {
    Auth   *service.Authenticator
    Events service.Publisher
}

func NewAuthHandler(a *service.Authenticator, events service.Publisher) *AuthHandler {
    return &AuthHandler{Auth: a, Events: events}
}

// ----- DTOs -----

type loginResp struct {
    AuthToken string      `json:"authToken"`
    User      *model.User `json:"user"`
}

var registerRules = validator.Rules{
    Code:     http.StatusUnprocessableEntity,
    Required: []string{"username", "password"},
    Strings:  []string{"username", "password", "fullname"},
    Nullable: []string{"fullname"},
    Trimmed:  []string{"username", "password"},
    Sized: []validator.Size{
        {Field: "username", Min: 1, Max: maxNameLen},
        {Field: "password", Min: 8, Max: 72, MaxBytes: 72}, // bcrypt reads at most 72 bytes
        {Field: "fullname", Max: maxNameLen},
    },
}

// profileRules are registerRules with every field optional.
var profileRules = validator.Rules{
    Code:     registerRules.Code,
    Strings:  registerRules.Strings,
    Nullable: registerRules.Nullable,
    Trimmed:  registerRules.Trimmed,
    Sized:    registerRules.Sized,
}

func usernameExists() error {
    return apperror.Validation(http.StatusUnprocessableEntity, "Username already exists", "username")
}

// Register: POST /api/users.  Creates the account and returns it without
// the password hash.
func (h *AuthHandler) Register(c echo.Context) error {
    body, err := validator.Decode(c.Request().Body)
    if err != nil {
        return apperror.BadRequest()
    }
    if err := body.Check(registerRules); err != nil {
        return err
    }
    fullname := ""
    if s := body.Trimmed("fullname"); s != nil {
        fullname = *s
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Auth.Register(ctx, fullname, *body.String("username"), *body.String("password"))
    if err != nil {
        if errors.Is(err, repository.ErrUsernameExists) {
            return usernameExists()
        }
        return err
    }
    h.publish(c, queue.NewActivityEvent(queue.ActionRegistered, "user", u.ID, u.ID, u.Username))
    c.Response().Header().Set(echo.HeaderLocation, "/api/users/"+u.ID)
    return c.JSON(http.StatusCreated, u)
}

// Login: POST /api/login.  Unknown users and wrong passwords get the same
// 401.
func (h *AuthHandler) Login(c echo.Context) error {
    body, err := validator.Decode(c.Request().Body)
    if err != nil {
        metrics.ObserveLogin("bad_request")
        return apperror.BadRequest()
    }
    username, password := body.String("username"), body.String("password")
    if username == nil || password == nil || *username == "" || *password == "" {
        metrics.ObserveLogin("bad_request")
        return apperror.BadRequest()
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, tok, err := h.Auth.Login(ctx, *username, *password)
    if err != nil {
        if errors.Is(err, service.ErrBadCredentials) {
            metrics.ObserveLogin("unauthorized")
            return apperror.Unauthorized()
        }
        return err
    }
    metrics.ObserveLogin("success")
    return c.JSON(http.StatusOK, loginResp{AuthToken: tok.Token, User: u})
}

// UpdateProfile: PUT /api/users/:id.  Only the caller's own id is accepted;
// any other id is indistinguishable from a missing user.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
    id := c.Param("id")
    if !validator.IsID(id) {
        return apperror.InvalidID()
    }
    body, err := validator.Decode(c.Request().Body)
    if err != nil {
        return apperror.BadRequest()
    }
    if err := body.Check(profileRules); err != nil {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    caller := middleware.UserID(c)
    u, err := h.Auth.UpdateProfile(ctx, caller, id, service.ProfileUpdate{
        Fullname: body.String("fullname"),
        Username: body.String("username"),
        Password: body.String("password"),
    })
    switch {
    case errors.Is(err, repository.ErrNotFound):
        return apperror.NotFound()
    case errors.Is(err, repository.ErrUsernameExists):
        return usernameExists()
    case err != nil:
        return err
    }
    h.publish(c, queue.NewActivityEvent(queue.ActionProfileUpdated, "user", u.ID, u.ID, u.Username))
    return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) publish(c echo.Context, ev queue.ActivityEvent) {
    if h.Events != nil {
        h.Events.Publish(c.Request().Context(), ev)
    }
}
