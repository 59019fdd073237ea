package notification

import (
	"timetrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	group := r.Group("/notifications")
	group.Use(auth, middleware.ExtractUserID())
	{
		group.GET("", handler.ListMine)
	}
}
