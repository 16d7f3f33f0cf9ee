package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medrag/src/infrastructure/job"
	"medrag/src/storage/minioctrl"
)

type uploadDocumentResponse struct {
	DocumentID int64 `json:"documentId"`
	JobID      int   `json:"jobId"`
}

// UploadDocument godoc
// @Summary Upload a document and queue it for ingestion
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document file"
// @Success 202 {object} uploadDocumentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /documents [post]
func (h *Handler) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, fmt.Errorf("file is required: %w", err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	objectName := fmt.Sprintf("%s-%s", uuid.New().String(), fileHeader.Filename)
	if err := h.objects.PutObject(c.Request.Context(), minioctrl.DocumentsBucket, objectName, content); err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	document, err := h.documents.Create(
		c.Request.Context(),
		fileHeader.Filename,
		fmt.Sprintf("%s/%s", minioctrl.DocumentsBucket, objectName),
	)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	payload, err := json.Marshal(job.IngestPayload{DocumentID: document.ID})
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	queued, err := h.jobs.EnqueueJob(c.Request.Context(), job.TaskTypeIngest, payload)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusAccepted, uploadDocumentResponse{
		DocumentID: document.ID,
		JobID:      queued.ID,
	})
}

// ListDocuments godoc
// @Summary List ingested documents
// @Tags documents
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Produce json
// @Success 200 {array} documentctrl.Document
// @Failure 500 {object} ErrorResponse
// @Router /documents [get]
func (h *Handler) ListDocuments(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	documents, err := h.documents.List(c.Request.Context(), limit, offset)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, documents)
}

// DeleteDocument godoc
// @Summary Delete a document and all its indexed passages
// @Tags documents
// @Param id path int true "Document ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /documents/{id} [delete]
func (h *Handler) DeleteDocument(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		sendError(c, http.StatusBadRequest, fmt.Errorf("invalid document id"))
		return
	}

	document, err := h.documents.GetByID(c.Request.Context(), id)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	if document == nil {
		sendError(c, http.StatusNotFound, fmt.Errorf("document not found: %d", id))
		return
	}

	if err := h.pipeline.DeleteDocument(c.Request.Context(), document); err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetJob godoc
// @Summary Get the status of a background job
// @Tags documents
// @Param id path int true "Job ID"
// @Produce json
// @Success 200 {object} job.Job
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /jobs/{id} [get]
func (h *Handler) GetJob(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, fmt.Errorf("invalid job id"))
		return
	}

	queued, err := h.jobs.GetJob(c.Request.Context(), id)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, queued)
}
