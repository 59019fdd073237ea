package main

import (
	"context"
	"os"

	"timetrack/internal/app"
	"timetrack/internal/bootstrap"
	"timetrack/internal/config"
	"timetrack/internal/shared/apperror"
	"timetrack/internal/shared/logger"
	"timetrack/internal/shared/tracing"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(err)
	}

	lg, err := logger.New(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer lg.Sync()
	zap.ReplaceGlobals(lg)

	apperror.Init()

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.AppEnv, lg)
	if err != nil {
		lg.Fatal("init tracing failed", zap.Error(err))
	}

	// build dependency + routes
	r, deps, err := app.BuildApp(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("build app failed", zap.Error(err))
	}

	auditLogger := bootstrap.NewStdoutAuditLogger(lg)
	err = bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		auditLogger,
		func(ctx context.Context) {
			deps.Close()
			if err := shutdownTracing(ctx); err != nil {
				lg.Warn("tracing shutdown failed", zap.Error(err))
			}
		},
	)
	if err != nil {
		lg.Fatal("http server failed", zap.Error(err))
	}
}
