package rbac

import (
	"timetrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, service Service) {
	group := r.Group("/rbac")
	group.Use(auth)
	{
		group.GET("/permissions", middleware.RBACAuthorize(service, "rbac", "read"), handler.Permissions)
	}
}
