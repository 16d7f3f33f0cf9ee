package job

import (
	"context"
	"encoding/json"
	"fmt"

	"medrag/src/core/ingest"
	"medrag/src/storage/minioctrl"
	"medrag/src/storage/postgres/documentctrl"
)

const TaskTypeIngest = "ingest"

// IngestPayload identifies the uploaded document a worker should process.
type IngestPayload struct {
	DocumentID int64 `json:"document_id"`
}

// IngestTask chunks and indexes a previously uploaded document.
type IngestTask struct {
	documents *documentctrl.DocumentService
	objects   *minioctrl.MinioService
	pipeline  *ingest.Pipeline
}

func NewIngestTask(
	documents *documentctrl.DocumentService,
	objects *minioctrl.MinioService,
	pipeline *ingest.Pipeline,
) *IngestTask {
	return &IngestTask{
		documents: documents,
		objects:   objects,
		pipeline:  pipeline,
	}
}

func (t *IngestTask) HandleIngestTask(ctx context.Context, rawPayload json.RawMessage) error {
	var payload IngestPayload
	if err := json.Unmarshal(rawPayload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal ingest payload: %w", err)
	}

	document, err := t.documents.GetByID(ctx, payload.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to get document %d: %w", payload.DocumentID, err)
	}
	if document == nil {
		return fmt.Errorf("document not found: %d", payload.DocumentID)
	}

	bucket, objectName := t.objects.GetBucketAndObjectFromURL(document.ObjectURL)
	if bucket == "" || objectName == "" {
		return fmt.Errorf("invalid document object url: %s", document.ObjectURL)
	}

	content, err := t.objects.GetObject(ctx, bucket, objectName)
	if err != nil {
		return fmt.Errorf("failed to fetch document object: %w", err)
	}

	if _, err := t.pipeline.Process(ctx, document, content); err != nil {
		return fmt.Errorf("failed to ingest document %d: %w", document.ID, err)
	}

	return nil
}
