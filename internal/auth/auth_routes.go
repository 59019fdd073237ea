package auth

import (
	"timetrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	group := r.Group("/auth")
	{
		group.POST("/login", middleware.RateLimitByIP(0.2, 5), handler.Login)
		group.POST("/logout", handler.Logout)

		totpGroup := group.Group("/totp", auth, middleware.ExtractUserID(), middleware.RateLimitByUser(0.5, 3))
		totpGroup.POST("/setup", handler.SetupTOTP)
		totpGroup.POST("/enable", handler.EnableTOTP)
	}
}
