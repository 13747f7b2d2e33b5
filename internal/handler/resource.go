package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/noteful-api/internal/apperror"
    "github.com/iliyamo/noteful-api/internal/metrics"
    "github.com/iliyamo/noteful-api/internal/middleware"
    "github.com/iliyamo/noteful-api/internal/model"
    "github.com/iliyamo/noteful-api/internal/queue"
    "github.com/iliyamo/noteful-api/internal/repository"
    "github.com/iliyamo/noteful-api/internal/service"
    "github.com/iliyamo/noteful-api/internal/validator"
)

// dbTimeout bounds every store call made from a handler.
const dbTimeout = 5 * time.Second

// Binder validates a decoded body and converts it to writable fields.
// create is true for POST and false for PUT.
type Binder[F any] func(b validator.Body, create bool) (F, error)

// ResourceHandler serves the five CRUD endpoints of one owner-scoped
// resource.  Folders, tags and notes are all instances of it.
type ResourceHandler[T model.Entity, F any] struct {
    Name     string // "folder", "tag", "note"; used in logs, events and messages
    BasePath string // collection path used for Location headers
    Repo     repository.Repository[T, F]
    Bind     Binder[F]
    Events   service.Publisher
    Log      zerolog.Logger
}

func (h *ResourceHandler[T, F]) conflictMessage() string {
    return fmt.Sprintf("The %s name already exists", h.Name)
}

// List: GET /api/<resource>?searchTerm=
func (h *ResourceHandler[T, F]) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    items, err := h.Repo.List(ctx, middleware.UserID(c), c.QueryParam("searchTerm"))
    if err != nil {
        return fmt.Errorf("list %ss: %w", h.Name, err)
    }
    return c.JSON(http.StatusOK, items)
}

// Get: GET /api/<resource>/:id
func (h *ResourceHandler[T, F]) Get(c echo.Context) error {
    id := c.Param("id")
    if !validator.IsID(id) {
        return apperror.InvalidID()
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    item, err := h.Repo.Get(ctx, middleware.UserID(c), id)
    if err != nil {
        return resourceError(err, h.conflictMessage())
    }
    return c.JSON(http.StatusOK, item)
}

// Create: POST /api/<resource>
func (h *ResourceHandler[T, F]) Create(c echo.Context) error {
    fields, err := h.bind(c, true)
    if err != nil {
        return err
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    item, err := h.Repo.Create(ctx, middleware.UserID(c), fields)
    if err != nil {
        return resourceError(err, h.conflictMessage())
    }
    h.publish(c, queue.ActionCreated, item.EntityID(), 0)
    c.Response().Header().Set(echo.HeaderLocation, h.BasePath+"/"+item.EntityID())
    return c.JSON(http.StatusCreated, item)
}

// Update: PUT /api/<resource>/:id
func (h *ResourceHandler[T, F]) Update(c echo.Context) error {
    id := c.Param("id")
    if !validator.IsID(id) {
        return apperror.InvalidID()
    }
    fields, err := h.bind(c, false)
    if err != nil {
        return err
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    item, err := h.Repo.Update(ctx, middleware.UserID(c), id, fields)
    if err != nil {
        return resourceError(err, h.conflictMessage())
    }
    h.publish(c, queue.ActionUpdated, id, 0)
    return c.JSON(http.StatusOK, item)
}

// Delete: DELETE /api/<resource>/:id
//
// Folder and tag deletes also clear references held by notes.  The count of
// notes touched is logged and exported as a metric; a failed cascade rolls
// back and is reported as a 500.
func (h *ResourceHandler[T, F]) Delete(c echo.Context) error {
    id := c.Param("id")
    if !validator.IsID(id) {
        return apperror.InvalidID()
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    owner := middleware.UserID(c)
    affected, err := h.Repo.Delete(ctx, owner, id)
    if err != nil {
        if !errors.Is(err, repository.ErrNotFound) && h.Name != "note" {
            metrics.ObserveCascadeFailure(h.Name)
            h.Log.Error().Err(err).Str("resource", h.Name).Str("id", id).Str("user_id", owner).
                Msg("cascade delete rolled back")
        }
        return resourceError(err, h.conflictMessage())
    }
    if affected > 0 {
        metrics.ObserveCascade(h.Name, affected)
        h.Log.Info().Str("resource", h.Name).Str("id", id).Str("user_id", owner).Int64("notes_affected", affected).
            Msg("cleared note references")
    }
    h.publish(c, queue.ActionDeleted, id, affected)
    return c.NoContent(http.StatusNoContent)
}

func (h *ResourceHandler[T, F]) bind(c echo.Context, create bool) (F, error) {
    var zero F
    body, err := validator.Decode(c.Request().Body)
    if err != nil {
        return zero, apperror.BadRequest()
    }
    return h.Bind(body, create)
}

func (h *ResourceHandler[T, F]) publish(c echo.Context, action, id string, affected int64) {
    if h.Events == nil {
        return
    }
    ev := queue.NewActivityEvent(action, h.Name, id, middleware.UserID(c), middleware.Username(c))
    ev.Affected = affected
    h.Events.Publish(c.Request().Context(), ev)
}
