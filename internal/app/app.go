package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"timetrack/internal/config"
	"timetrack/internal/location"
	"timetrack/internal/middleware"
	"timetrack/internal/seed"
	"timetrack/internal/shared/connection"
	"timetrack/internal/shared/metrics"
	"timetrack/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the shared clients every module is built from.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	SQL     *sql.DB
	Redis   *redis.Client
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

func (d *Deps) Close() {
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.SQL != nil {
		_ = d.SQL.Close()
	}
}

// Connect opens the database and redis clients described by cfg.
func Connect(cfg *config.Config, logger *zap.Logger) (*Deps, error) {
	db, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis, cfg.Database.MaxRetries)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	d := &Deps{Config: cfg, DB: db, SQL: sqlDB, Redis: rdb, Logger: logger}
	if cfg.Metrics.Enabled {
		d.Metrics = metrics.New(cfg.Metrics)
	}
	return d, nil
}

// BuildApp connects infrastructure, prepares the schema and returns the
// fully routed engine.
func BuildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gin.Engine, *Deps, error) {
	d, err := Connect(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := Migrate(d.DB); err != nil {
			d.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("database schema migrated")
	}

	if cfg.Seed.OnBoot {
		if _, err := Seeder(d).Run(ctx); err != nil {
			d.Close()
			return nil, nil, fmt.Errorf("seed: %w", err)
		}
	}

	router, err := NewRouter(d)
	if err != nil {
		d.Close()
		return nil, nil, err
	}
	return router, d, nil
}

func Seeder(d *Deps) *seed.Seeder {
	return seed.NewSeeder(user.NewRepository(d.DB), location.NewRepository(d.DB), d.Logger)
}

func NewRouter(d *Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	if d.Config.Tracing.Enabled {
		r.Use(otelgin.Middleware(d.Config.Tracing.ServiceName))
	}
	r.Use(middleware.RequestID())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	if err := registerModules(r.Group("/api/v1"), d); err != nil {
		return nil, err
	}
	return r, nil
}
