package vacation

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
	requests := r.Group("/vacation-requests")
	requests.Use(auth, middleware.ExtractUserID(), middleware.ContextLogger(logger))
	{
		requests.POST("",
			middleware.RateLimitByUser(0.5, 3),
			middleware.RBACAuthorize(rbacService, "vacation", "create"),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		requests.GET("/my-requests", middleware.RBACAuthorize(rbacService, "vacation", "read_own"), handler.MyRequests)
		requests.GET("/pending", middleware.RBACAuthorize(rbacService, "vacation", "read_all"), handler.Pending)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, "vacation", "read_own"), handler.GetByID)

		requests.PUT("/:id", middleware.RBACAuthorize(rbacService, "vacation", "update_own"), handler.Update)
		requests.PUT("/:id/approve",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "vacation", "approve"),
			handler.Approve,
		)
		requests.PUT("/:id/reject",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "vacation", "approve"),
			handler.Reject,
		)
		requests.DELETE("/:id", middleware.RBACAuthorize(rbacService, "vacation", "cancel_own"), handler.Cancel)
	}
}
