// Command scribed runs the scribely API server: account registration and
// login, media uploads, and transcription.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/driver/sqlite"

	"github.com/scribely/scribely/api"
	"github.com/scribely/scribely/auth"
	"github.com/scribely/scribely/auth/jwt"
	"github.com/scribely/scribely/auth/password"
	"github.com/scribely/scribely/config"
	"github.com/scribely/scribely/database"
	"github.com/scribely/scribely/logger"
	"github.com/scribely/scribely/media"
	"github.com/scribely/scribely/observability"
	"github.com/scribely/scribely/server"
	"github.com/scribely/scribely/server/endpoint"
	"github.com/scribely/scribely/server/middleware"
	"github.com/scribely/scribely/storage/local"
	"github.com/scribely/scribely/store"
	"github.com/scribely/scribely/transcription/whisper"
	"github.com/scribely/scribely/version"
)

const serviceName = "scribed"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scribed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(serviceName)
	if err != nil {
		return err
	}

	logger.Init(cfg.Logging)
	log := logger.New(&cfg.Logging, cfg.Name)
	log.Info("Starting scribed", map[string]interface{}{
		"version":     version.Get().Version,
		"environment": cfg.Environment,
	})

	obs, err := observability.Init(ctx, cfg.Name, cfg.Observability, log)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			log.Warn("Observability shutdown error", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	}()

	db, err := database.New(ctx, sqlite.Open(cfg.Database.DSN), cfg.Database, log.WithComponent("database"))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(store.Models()...); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	accounts := store.NewAccounts(db)
	mediaStore := store.NewMediaStore(db)

	hasher := password.NewHasher(cfg.Auth.Password)
	tokens, err := jwt.NewService(&cfg.Auth.JWT)
	if err != nil {
		return err
	}
	authService := auth.NewService(accounts, hasher, tokens, log)

	objects, err := local.NewStorage(cfg.Storage.BasePath)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	provider := whisper.NewProvider(cfg.Transcription)
	mediaService := media.NewService(mediaStore, objects, provider, log)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(cfg.Name, map[string]endpoint.CheckFunc{
		"database": db.PingContext,
	})

	guard := middleware.Auth(tokens, log)
	api.RegisterRoutes(srv.GinEngine(), api.NewAuthHandler(authService), api.NewMediaHandler(mediaService), guard)

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	return srv.Stop(context.Background())
}
