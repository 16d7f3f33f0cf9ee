package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medrag/src/core/assistant"
)

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	Mode  string `json:"mode"` // vector, keyword or hybrid; empty selects vector
	Limit int    `json:"limit"`
}

// Search godoc
// @Summary Search indexed passages
// @Tags search
// @Accept json
// @Produce json
// @Param body body searchRequest true "Search parameters"
// @Success 200 {array} assistant.Passage
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /search [post]
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	mode, err := assistant.ParseSearchMode(req.Mode)
	if err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	results, err := h.assistant.Search(c.Request.Context(), req.Query, mode, req.Limit)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, results)
}
