package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"consult-backend/internal/catalogapi"
	"consult-backend/internal/consultations"
	"consult-backend/internal/matching"
	"consult-backend/internal/services/health"
	"consult-backend/internal/shared/auth"
	"consult-backend/internal/shared/cache"
	"consult-backend/internal/shared/config"
	"consult-backend/internal/shared/server"
	"consult-backend/internal/shared/server/middleware"
	"consult-backend/internal/shared/storage/db"
	"consult-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config              config.Config
	Router              *gin.Engine
	DB                  *sql.DB
	Redis               *goredis.Client
	Cache               cache.Cache
	Catalog             *matching.Catalog
	Engine              *matching.Engine
	Tokens              *auth.Tokens
	ConsultationsRepo   consultations.Repo
	ConsultationService *consultations.Service
	ConsultationHandler *consultations.Handler
	CatalogHandler      *catalogapi.Handler
	Health              *health.Service
}

// Build prepares dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	catalog, err := BuildCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	rates := matching.FixedRate(cfg.KRWUSDRate)
	engine, err := matching.NewEngine(catalog, nil, rates)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.Env)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rdb, err := buildRedis(ctx, cfg)
	if err != nil {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Redis:   rdb,
		Catalog: catalog,
		Engine:  engine,
		Tokens:  tokens,
	}
	if rdb != nil {
		app.Cache = cache.NewRedisCache(rdb, "")
	} else {
		app.Cache = cache.NewMemoryCache(nil)
	}
	if sqlDB != nil {
		app.ConsultationsRepo = &consultations.PGRepo{DB: sqlDB}
	} else {
		app.ConsultationsRepo = consultations.NewMemoryRepo()
	}

	app.ConsultationService = &consultations.Service{
		Engine:   engine,
		Repo:     app.ConsultationsRepo,
		Cache:    app.Cache,
		CacheTTL: cfg.CacheTTL,
	}
	app.ConsultationHandler = consultations.NewHandler(app.ConsultationService)
	app.CatalogHandler = catalogapi.NewHandler(catalog, rates)
	app.Health = health.NewService(sqlDB, catalog.Version())

	app.Router = server.NewRouter(server.RouterDeps{
		Config:              cfg,
		Tokens:              tokens,
		Health:              app.Health,
		CatalogHandler:      app.CatalogHandler,
		ConsultationHandler: app.ConsultationHandler,
		RateLimiter:         middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":             cfg.Env,
		"catalog_version": catalog.Version(),
		"database":        sqlDB != nil,
		"redis":           rdb != nil,
	})
	return app, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

// BuildCatalog loads the catalog file at path, or the embedded default when
// path is empty.
func BuildCatalog(path string) (*matching.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return matching.DefaultCatalog()
	}
	catalog, err := matching.LoadCatalogFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return catalog, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_missing", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_unavailable", map[string]any{"fallback": "memory", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildRedis(ctx context.Context, cfg config.Config) (*goredis.Client, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, nil
	}
	rdb, err := cache.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"fallback": "memory", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return rdb, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
