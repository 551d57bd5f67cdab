package http

import (
	"net/http"

	"tyrehub/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) sendChatMessage(c *gin.Context) {
	var req struct {
		SessionID uint   `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	exchange, err := h.Chat.SendMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exchange)
}

func (h *Handlers) listChatSessions(c *gin.Context) {
	sessions, err := h.Chat.ListSessions(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *Handlers) getChatSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	session, msgs, err := h.Chat.GetSession(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	c.JSON(http.StatusOK, gin.H{
		"session":  session,
		"messages": msgs,
	})
}
