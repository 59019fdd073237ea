package user

import (
	"timetrack/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	rbacService middleware.RBACService,
	logger *zap.Logger,
) {
	users := r.Group("/users")
	users.Use(auth, middleware.ExtractUserID(), middleware.ContextLogger(logger))
	{
		users.GET("/me",
			middleware.RBACAuthorize(rbacService, "user", "read_self"),
			handler.Me,
		)

		users.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "user", "manage"),
			handler.GetAll,
		)

		users.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "user", "manage"),
			handler.GetByID,
		)

		users.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "user", "manage"),
			handler.Create,
		)

		users.PUT("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "user", "manage"),
			handler.Update,
		)

		users.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "user", "manage"),
			handler.Delete,
		)
	}
}
