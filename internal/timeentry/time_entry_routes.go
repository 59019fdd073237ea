package timeentry

import (
	"timetrack/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	rbacService middleware.RBACService,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	entries := r.Group("/time-entries")
	entries.Use(auth, middleware.ExtractUserID(), middleware.ContextLogger(logger))
	{
		entries.POST("/clock-in",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, "time_entry", "clock"),
			middleware.Idempotency(rdb),
			handler.ClockIn,
		)
		entries.POST("/clock-out",
			middleware.RateLimitByUser(1, 3),
			middleware.RBACAuthorize(rbacService, "time_entry", "clock"),
			middleware.Idempotency(rdb),
			handler.ClockOut,
		)

		entries.GET("/my-entries", middleware.RBACAuthorize(rbacService, "time_entry", "read_own"), handler.MyEntries)
		entries.GET("/my-active", middleware.RBACAuthorize(rbacService, "time_entry", "read_own"), handler.MyActive)

		entries.GET("/active-employees", middleware.RBACAuthorize(rbacService, "time_entry", "read_all"), handler.ActiveEmployees)
		entries.GET("/export",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, "time_entry", "export"),
			handler.Export,
		)
		entries.PUT("/:id", middleware.RBACAuthorize(rbacService, "time_entry", "update"), handler.Update)
	}
}
