package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/noteful-api/internal/handler"
	"github.com/iliyamo/noteful-api/internal/middleware"
	"github.com/iliyamo/noteful-api/internal/model"
)

// Resources groups the three owner-scoped resource handlers.
type Resources struct {
	Folders *handler.ResourceHandler[*model.Folder, model.FolderFields]
	Tags    *handler.ResourceHandler[*model.Tag, model.TagFields]
	Notes   *handler.ResourceHandler[*model.Note, model.NoteFields]
}

// RegisterResources mounts /api/folders, /api/tags and /api/notes.  Every
// route requires a valid bearer token.  The middleware is attached per route
// so unmatched /api paths still fall through to a plain 404.
func RegisterResources(e *echo.Echo, r Resources, v middleware.TokenVerifier) {
	g := e.Group("/api")
	auth := middleware.JWTAuth(v)
	mount(g, "/folders", r.Folders, auth)
	mount(g, "/tags", r.Tags, auth)
	mount(g, "/notes", r.Notes, auth)
}

func mount[T model.Entity, F any](g *echo.Group, path string, h *handler.ResourceHandler[T, F], m ...echo.MiddlewareFunc) {
	g.GET(path, h.List, m...)
	g.GET(path+"/:id", h.Get, m...)
	g.POST(path, h.Create, m...)
	g.PUT(path+"/:id", h.Update, m...)
	g.DELETE(path+"/:id", h.Delete, m...)
}
