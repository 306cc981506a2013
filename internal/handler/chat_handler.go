package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/docchat/internal/pkg/errcode"
	"github.com/xxxsen/docchat/internal/pkg/response"
	"github.com/xxxsen/docchat/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Retrieval *bool  `json:"retrieval"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	// Retrieval defaults to on; the UI can switch it off per message.
	retrieval := true
	if req.Retrieval != nil {
		retrieval = *req.Retrieval
	}
	turn, err := h.chat.Chat(c.Request.Context(), req.SessionID, req.Message, retrieval)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, turn)
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	sessions, counts, err := h.chat.ListSessions(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	type sessionItem struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Turns int64  `json:"turns"`
		Ctime int64  `json:"ctime"`
		Mtime int64  `json:"mtime"`
	}
	items := make([]sessionItem, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, sessionItem{
			ID:    s.ID,
			Title: s.Title,
			Turns: counts[s.ID],
			Ctime: s.Ctime,
			Mtime: s.Mtime,
		})
	}
	response.Success(c, gin.H{"sessions": items})
}

func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Param("id")
	turns, err := h.chat.History(c.Request.Context(), sessionID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"turns": turns})
}
