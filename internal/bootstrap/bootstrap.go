// Package bootstrap assembles the application's dependency graph.
package bootstrap

import (
	"context"
	"database/sql"
	"log"

	"github.com/gin-gonic/gin"

	"filings-backend/internal/auth"
	"filings-backend/internal/comments"
	"filings-backend/internal/filings"
	"filings-backend/internal/registry"
	"filings-backend/internal/services/health"
	"filings-backend/internal/shared/config"
	"filings-backend/internal/shared/server"
	"filings-backend/internal/shared/storage/db"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Registry        *registry.Client
	FilingStore     *filings.Store
	CommentsRepo    comments.Repo
	CommentsService *comments.Service
	FilingsHandler  *filings.Handler
	SSO             *auth.SSOService
	Health          *health.Service
}

// Build prepares shared dependencies and the wired router.
func Build(cfg config.Config) (*App, error) {
	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	registryClient, err := registry.NewClient(cfg.RegistryAPIURL, cfg.RegistryAPIKey)
	if err != nil {
		return nil, err
	}

	sqlDB := buildDB(ctx, cfg)

	var commentsRepo comments.Repo
	if sqlDB != nil {
		commentsRepo = &comments.PGRepo{DB: sqlDB}
	} else {
		commentsRepo = comments.NewMemoryRepo()
	}

	store := filings.NewStore(registryClient)
	commentsSvc := comments.NewService(registryClient, commentsRepo)
	filingsHandler := filings.NewHandler(store, commentsSvc, registryClient)
	sso := auth.NewSSOService(
		cfg.SSOClientID,
		cfg.SSOClientSecret,
		cfg.SSOAuthURL,
		cfg.SSOTokenURL,
		cfg.SSOUserInfoURL,
		cfg.SSORedirectURL,
		cfg.UIRedirectURL,
	)
	healthSvc := health.NewService()

	app := &App{
		Config:          cfg,
		DB:              sqlDB,
		Registry:        registryClient,
		FilingStore:     store,
		CommentsRepo:    commentsRepo,
		CommentsService: commentsSvc,
		FilingsHandler:  filingsHandler,
		SSO:             sso,
		Health:          healthSvc,
	}
	app.Router = server.NewRouter(cfg, filingsHandler, sso, healthSvc)
	return app, nil
}

// buildDB connects to Postgres when configured; the comment audit falls
// back to memory otherwise.
func buildDB(ctx context.Context, cfg config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		log.Printf("failed to connect database, falling back to memory: %v", err)
		return nil
	}
	if err := db.RunMigrations(ctx, conn); err != nil {
		log.Printf("failed to run migrations, falling back to memory: %v", err)
		conn.Close()
		return nil
	}
	return conn
}
