package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medrag/src/core/assistant"
	"medrag/src/core/ingest"
	"medrag/src/infrastructure/job"
	"medrag/src/storage/minioctrl"
	"medrag/src/storage/postgres/documentctrl"
)

type Handler struct {
	assistant  assistant.Service
	sysService *assistant.SystemService
	documents  *documentctrl.DocumentService
	objects    *minioctrl.MinioService
	jobs       *job.JobService
	pipeline   *ingest.Pipeline
}

func NewHandler(
	svc assistant.Service,
	sysService *assistant.SystemService,
	documents *documentctrl.DocumentService,
	objects *minioctrl.MinioService,
	jobs *job.JobService,
	pipeline *ingest.Pipeline,
) *Handler {
	return &Handler{
		assistant:  svc,
		sysService: sysService,
		documents:  documents,
		objects:    objects,
		jobs:       jobs,
		pipeline:   pipeline,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.ChatPage)

	v1 := r.Group("/api/v1")

	// Chat routes
	v1.POST("/chat/completions", h.GenerateCompletion)
	v1.GET("/chat/history", h.GetChatHistory)

	// Search routes
	v1.POST("/search", h.Search)

	// Document routes
	v1.GET("/documents", h.ListDocuments)
	v1.POST("/documents", h.UploadDocument)
	v1.DELETE("/documents/:id", h.DeleteDocument)
	v1.GET("/jobs/:id", h.GetJob)

	// System routes
	v1.GET("/health", h.CheckHealth)
}

// Common error response structure
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func sendError(c *gin.Context, status int, err error) {
	var code string
	switch {
	case errors.Is(err, assistant.ErrEmptyQuestion):
		code = "EMPTY_QUESTION"
		status = http.StatusBadRequest
	case errors.Is(err, assistant.ErrInvalidMode):
		code = "INVALID_SEARCH_MODE"
		status = http.StatusBadRequest
	case errors.Is(err, job.ErrJobNotFound):
		code = "NOT_FOUND"
		status = http.StatusNotFound
	case status == http.StatusBadRequest:
		code = "BAD_REQUEST"
	case status == http.StatusNotFound:
		code = "NOT_FOUND"
	default:
		code = "INTERNAL_ERROR"
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func sendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
