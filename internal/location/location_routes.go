package location

import (
	"timetrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, rbacService middleware.RBACService) {
	locations := r.Group("/locations")
	locations.Use(auth)
	{
		locations.GET("", middleware.RBACAuthorize(rbacService, "location", "read"), handler.GetActive)
		locations.GET("/all", middleware.RBACAuthorize(rbacService, "location", "manage"), handler.GetAll)
		locations.GET("/:id", middleware.RBACAuthorize(rbacService, "location", "read"), handler.GetByID)

		locations.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "location", "manage"),
			handler.Create,
		)
		locations.PUT("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "location", "manage"),
			handler.Update,
		)
		locations.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "location", "manage"),
			handler.Delete,
		)
	}
}
