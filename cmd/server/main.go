package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // request id and panic recovery
	"github.com/rs/zerolog"

	"github.com/iliyamo/noteful-api/internal/config"     // Internal config loader
	"github.com/iliyamo/noteful-api/internal/database"   // MySQL pool and migrations
	"github.com/iliyamo/noteful-api/internal/handler"    // HTTP handlers
	"github.com/iliyamo/noteful-api/internal/logging"    // zerolog setup
	"github.com/iliyamo/noteful-api/internal/middleware" // auth gate and request logging
	"github.com/iliyamo/noteful-api/internal/model"      // resource entities
	"github.com/iliyamo/noteful-api/internal/queue"      // activity consumer
	"github.com/iliyamo/noteful-api/internal/repository" // MySQL repositories
	"github.com/iliyamo/noteful-api/internal/router"     // Internal router setup
	"github.com/iliyamo/noteful-api/internal/service"    // authenticator and event publisher
)

func main() {
	cfg := config.Load() // Load environment config
	log := logging.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("apply migrations")
		}
	}

	events := startEvents(ctx, cfg.Events, log)

	auth := service.NewAuthenticator(repository.NewUserRepo(db), cfg.JWTSecret, cfg.JWTExpiry, cfg.BcryptCost)
	resources := router.Resources{
		Folders: &handler.ResourceHandler[*model.Folder, model.FolderFields]{
			Name: "folder", BasePath: "/api/folders", Repo: repository.NewFolderRepo(db),
			Bind: handler.BindFolder, Events: events, Log: log,
		},
		Tags: &handler.ResourceHandler[*model.Tag, model.TagFields]{
			Name: "tag", BasePath: "/api/tags", Repo: repository.NewTagRepo(db),
			Bind: handler.BindTag, Events: events, Log: log,
		},
		Notes: &handler.ResourceHandler[*model.Note, model.NoteFields]{
			Name: "note", BasePath: "/api/notes", Repo: repository.NewNoteRepo(db),
			Bind: handler.BindNote, Events: events, Log: log,
		},
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.RequestID(), middleware.RequestLogger(log), echomw.Recover())

	router.RegisterRoutes(e, db) // Register application routes
	router.RegisterAuth(e, handler.NewAuthHandler(auth, events), auth)
	router.RegisterResources(e, resources, auth)

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening") // Print startup info
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// startEvents returns the activity publisher and, when events are enabled,
// starts the consumer that writes them to the activity log.
func startEvents(ctx context.Context, cfg config.EventsConfig, log zerolog.Logger) service.Publisher {
	if !cfg.Enabled {
		return service.NopPublisher{}
	}
	pub := service.NewAMQPPublisher(cfg.URL, cfg.Queue, log)
	go func() {
		<-ctx.Done()
		_ = pub.Close()
	}()

	consumer := &queue.Consumer{URL: cfg.URL, Queue: cfg.Queue, LogDir: cfg.LogDir, Log: log}
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("activity consumer stopped")
		}
	}()
	return pub
}
