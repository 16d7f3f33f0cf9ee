package job

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrJobNotFound is returned when a job ID does not match any record
var ErrJobNotFound = errors.New("job not found")

// JobStatus tracks a job through its lifecycle
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job is a queued unit of background work, currently document ingestion.
// Payload carries the task-specific parameters (see IngestPayload).
type Job struct {
	ID        int             `json:"id"`
	TaskType  string          `json:"task_type"`
	Payload   json.RawMessage `json:"payload"`
	Status    JobStatus       `json:"status"`
	Error     *string         `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// JobRepository defines the interface for job persistence
type JobRepository interface {
	Create(ctx context.Context, taskType string, payload json.RawMessage) (*Job, error)
	// Get returns ErrJobNotFound when no job has the given ID
	Get(ctx context.Context, id int) (*Job, error)
	UpdateStatus(ctx context.Context, id int, status JobStatus, err *string) error
}
