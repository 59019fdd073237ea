package main

import (
	"os"

	"timetrack/internal/app"
	"timetrack/internal/config"
	"timetrack/internal/shared/apperror"
	"timetrack/internal/shared/logger"

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

	if err := app.RunWorker(cfg); err != nil {
		lg.Fatal("run worker failed", zap.Error(err))
	}
}
