package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nyat/backend/internal/model"
	"github.com/nyat/backend/internal/service"
)

type ChatHandler struct {
	svc *service.ChatService
}

func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// CreatePM godoc
// @Summary Open a private chat with another user
// @Description Returns the chat shared with the peer, creating it if
// @Description missing. Created and pre-existing chats both answer 201.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreatePMRequest true "Peer username"
// @Success 201 {object} model.CreatePMResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /chat/pm [post]
func (h *ChatHandler) CreatePM(c *gin.Context) {
	var req model.CreatePMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
		return
	}

	chatID, err := h.svc.ResolvePrivateChat(c.Request.Context(), user.ID, req.PeerUsername)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPeerNotFound), errors.Is(err, service.ErrSelfChat):
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		default:
			slog.Error("private chat resolution failed", slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, model.CreatePMResponse{ChatID: chatID})
}
