package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nyat/backend/internal/model"
	"github.com/nyat/backend/internal/service"
)

const authUserKey = "auth_user"

// AuthMiddleware resolves the Authorization header to an authenticated
// identity. A missing header or a failed verification answers a generic
// 401; only a structurally broken header earns a 400. The concrete
// verification failure stays in the logs.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := service.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			if errors.Is(err, service.ErrBadAuthHeader) {
				c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "malformed authorization header"})
			} else {
				c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
			}
			c.Abort()
			return
		}

		user, err := authService.VerifyToken(token)
		if err != nil {
			slog.Debug("token rejected", slog.Any("error", err))
			c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
			c.Abort()
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

func GetAuthUser(c *gin.Context) *model.AuthUser {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.AuthUser); ok {
			return user
		}
	}
	return nil
}

// RequestLogger logs one line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}
