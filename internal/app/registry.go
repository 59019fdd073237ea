package app

import (
	"timetrack/internal/auth"
	"timetrack/internal/auth/token"
	"timetrack/internal/location"
	"timetrack/internal/messaging/kafka"
	"timetrack/internal/middleware"
	"timetrack/internal/notification"
	"timetrack/internal/rbac"
	"timetrack/internal/rbac/infra"
	"timetrack/internal/timeentry"
	"timetrack/internal/user"
	"timetrack/internal/vacation"

	"github.com/gin-gonic/gin"
)

func registerModules(api *gin.RouterGroup, d *Deps) error {
	cfg := d.Config
	log := d.Logger

	tokens, err := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	if err != nil {
		return err
	}
	authMW := middleware.AuthMiddleware(tokens)

	// --- Repositories ---
	authRepo := auth.NewRepository(d.DB)
	userRepo := user.NewRepository(d.DB)
	locationRepo := location.NewRepository(d.DB)
	timeEntryRepo := timeentry.NewRepository(d.DB)
	vacationRepo := vacation.NewRepository(d.DB)
	outboxRepo := kafka.NewOutboxRepository(d.DB)
	notificationRepo := notification.NewRepository(d.Redis)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(rbac.NewStaticRepository(), enforcer, log)
	if err != nil {
		return err
	}

	// --- Services ---
	authService := auth.NewService(authRepo, tokens, cfg.Auth.TOTPIssuer, log)
	userService := user.NewService(d.SQL, userRepo, log)
	locationService := location.NewService(d.SQL, locationRepo, d.Redis, cfg.Location, log)
	timeEntryService := timeentry.NewService(d.SQL, timeEntryRepo, locationRepo, outboxRepo, d.Metrics, log)
	vacationService := vacation.NewService(d.SQL, vacationRepo, outboxRepo, d.Metrics, log)
	notificationService := notification.NewService(notificationRepo, log)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.IsProduction(), log)
	userHandler := user.NewHandler(userService, log)
	locationHandler := location.NewHandler(locationService, log)
	timeEntryHandler := timeentry.NewHandler(timeEntryService, log)
	vacationHandler := vacation.NewHandler(vacationService, log)
	notificationHandler := notification.NewHandler(notificationService, log)
	rbacHandler := rbac.NewHandler(rbacService, log)

	// --- Routes Registration ---
	auth.RegisterRoutes(api, authHandler, authMW)
	user.RegisterRoutes(api, userHandler, authMW, rbacService, log)
	location.RegisterRoutes(api, locationHandler, authMW, rbacService)
	timeentry.RegisterRoutes(api, timeEntryHandler, authMW, rbacService, d.Redis, log)
	vacation.RegisterRoutes(api, vacationHandler, authMW, rbacService, d.Redis, log)
	notification.RegisterRoutes(api, notificationHandler, authMW)
	rbac.RegisterRoutes(api, rbacHandler, authMW, rbacService)

	return nil
}
