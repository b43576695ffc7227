package middleware

import (
	"brainer_backend/internal/service"
	"brainer_backend/internal/util"
	"brainer_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware requires a valid bearer token that belongs to an active user.
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			tokenString = strings.TrimSpace(authHeader[7:])
		}

		if tokenString == "" {
			util.HandleError(c, util.UnauthorizedError("Not authenticated"))
			c.Abort()
			return
		}

		_, user, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			logger.Log.Debug("bearer token rejected",
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			util.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set(util.ContextCurrentUserKey, user)
		c.Next()
	}
}
