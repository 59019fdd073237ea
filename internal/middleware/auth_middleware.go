package middleware

import (
	"errors"
	"strings"

	autherrors "timetrack/internal/auth/errors"
	"timetrack/internal/auth/token"
	"timetrack/internal/shared/contextutil"
	"timetrack/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// TokenParser verifies an access token and returns its claims.
type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

// AuthMiddleware accepts a Bearer header or the access_token cookie.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Abort(c, autherrors.ErrTokenMissing)
			return
		}

		claims, err := parser.Parse(tokenString)
		if err != nil {
			errObj := autherrors.ErrInvalidToken
			if errors.Is(err, token.ErrExpiredToken) {
				errObj = autherrors.ErrTokenExpired
			}
			response.Abort(c, errObj)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		ctx := contextutil.WithUserID(c.Request.Context(), claims.UserID)
		ctx = contextutil.WithRole(ctx, claims.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
