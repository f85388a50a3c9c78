package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/223MapAction/Model-deploy/internal/model"
	"github.com/223MapAction/Model-deploy/internal/service"
)

type HistoryHandler struct {
	svc *service.ChatService
	log zerolog.Logger
}

func NewHistoryHandler(svc *service.ChatService, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{svc: svc, log: log.With().Str("component", "history-handler").Logger()}
}

// Get handles GET /MapApi/history/:chat_key and returns the session messages
// oldest first.
func (h *HistoryHandler) Get(c *gin.Context) {
	key := c.Param("chat_key")
	if key == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "missing chat_key"})
		return
	}

	history, err := h.svc.History(c.Request.Context(), key)
	if err != nil {
		h.log.Error().Err(err).Str("chat_key", key).Msg("failed to load chat history")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "failed to load chat history"})
		return
	}
	if history == nil {
		history = []model.ChatMessage{}
	}

	c.JSON(http.StatusOK, history)
}
