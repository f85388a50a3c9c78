package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/223MapAction/Model-deploy/internal/config"
	"github.com/223MapAction/Model-deploy/internal/model"
	"github.com/223MapAction/Model-deploy/internal/service"
)

type ChatHandler struct {
	svc      *service.ChatService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewChatHandler(svc *service.ChatService, cfg config.ChatConfig, log zerolog.Logger) *ChatHandler {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = true
	}
	return &ChatHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return allowed[r.Header.Get("Origin")]
			},
		},
		log: log.With().Str("component", "chat-ws").Logger(),
	}
}

// Serve handles GET /ws/chat. Each connection runs its own command loop
// until the client disconnects or references an unknown incident.
func (h *ChatHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("origin", c.GetHeader("Origin")).Msg("websocket upgrade refused")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	for {
		var cmd model.ChatCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}

		if cmd.IncidentID == "" || cmd.SessionID == "" {
			h.writeError(conn, "Missing incident_id or session_id")
			continue
		}

		switch cmd.Action {
		case "delete_chat":
			if err := h.svc.DeleteChat(ctx, cmd.SessionID, cmd.IncidentID); err != nil {
				h.log.Error().Err(err).Msg("failed to delete chat session")
				h.writeError(conn, "failed to delete chat history")
				continue
			}
			conn.WriteJSON(model.MessageResponse{Message: "Chat history deleted successfully."})

		default:
			answer, err := h.svc.Answer(ctx, cmd)
			if err != nil {
				if errors.Is(err, service.ErrUnknownIncident) {
					h.writeError(conn, "unknown incident_id")
					conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown incident"),
						writeDeadline())
					return
				}
				h.log.Error().Err(err).Str("incident_id", cmd.IncidentID).Msg("chat answer failed")
				h.writeError(conn, "failed to answer question")
				continue
			}
			conn.WriteJSON(model.ChatAnswer{
				IncidentID: cmd.IncidentID,
				SessionID:  cmd.SessionID,
				Question:   cmd.Question,
				Answer:     answer,
			})
		}
	}
}

func writeDeadline() time.Time { return time.Now().Add(5 * time.Second) }

func (h *ChatHandler) writeError(conn *websocket.Conn, msg string) {
	if err := conn.WriteJSON(gin.H{"error": msg}); err != nil {
		h.log.Warn().Err(err).Msg("failed to write websocket error frame")
	}
}
