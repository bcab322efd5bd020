package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nyat/backend/internal/model"
	"github.com/nyat/backend/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register godoc
// @Summary Register a new account
// @Description Creates an account and returns a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.AuthRequest true "Username and password"
// @Success 200 {object} model.TokenResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /user/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	token, err := h.svc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.TokenResponse{Token: token})
}

// Login godoc
// @Summary Login
// @Description Authenticates an account and returns a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.AuthRequest true "Username and password"
// @Success 200 {object} model.TokenResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /user/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.TokenResponse{Token: token})
}

// writeAuthError maps domain errors to responses. Validation and
// conflict messages are safe to reveal; everything else collapses to a
// generic body with the cause logged.
func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCharacter),
		errors.Is(err, service.ErrBadPasswordLength),
		errors.Is(err, service.ErrUsernameExists):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("auth request failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "internal server error"})
	}
}
