package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type generateCompletionRequest struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question" binding:"required"`
}

// GenerateCompletion godoc
// @Summary Answer a question with retrieved context
// @Tags chat
// @Accept json
// @Produce json
// @Param body body generateCompletionRequest true "Completion parameters"
// @Success 200 {object} assistant.Answer
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chat/completions [post]
func (h *Handler) GenerateCompletion(c *gin.Context) {
	var req generateCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	answer, err := h.assistant.Answer(c.Request.Context(), req.SessionID, req.Question)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, answer)
}

// GetChatHistory godoc
// @Summary Get chat history
// @Tags chat
// @Param sessionId query string true "Chat session ID"
// @Produce json
// @Success 200 {array} assistant.ChatMessage
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chat/history [get]
func (h *Handler) GetChatHistory(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		sendError(c, http.StatusBadRequest, fmt.Errorf("sessionId is required"))
		return
	}

	history, err := h.assistant.History(c.Request.Context(), sessionID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, history)
}
