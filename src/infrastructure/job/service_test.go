package job_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"medrag/src/infrastructure/job"
)

type fakeRepository struct {
	jobs     map[int]*job.Job
	nextID   int
	statuses []job.JobStatus
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{jobs: make(map[int]*job.Job)}
}

func (f *fakeRepository) Create(ctx context.Context, taskType string, payload json.RawMessage) (*job.Job, error) {
	f.nextID++
	j := &job.Job{
		ID:       f.nextID,
		TaskType: taskType,
		Payload:  payload,
		Status:   job.JobStatusPending,
	}
	f.jobs[j.ID] = j
	return j, nil
}

func (f *fakeRepository) Get(ctx context.Context, id int) (*job.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, job.ErrJobNotFound
	}
	return j, nil
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, id int, status job.JobStatus, errStr *string) error {
	j, ok := f.jobs[id]
	if !ok {
		return job.ErrJobNotFound
	}
	j.Status = status
	j.Error = errStr
	f.statuses = append(f.statuses, status)
	return nil
}

type fakePublisher struct {
	topic    string
	messages []*message.Message
}

func (f *fakePublisher) Publish(topic string, messages ...*message.Message) error {
	f.topic = topic
	f.messages = append(f.messages, messages...)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func TestEnqueueJob(t *testing.T) {
	repo := newFakeRepository()
	publisher := &fakePublisher{}
	svc := job.NewJobService(publisher, repo, watermill.NopLogger{}, nil)

	payload, _ := json.Marshal(job.IngestPayload{DocumentID: 42})
	queued, err := svc.EnqueueJob(context.Background(), job.TaskTypeIngest, payload)
	if err != nil {
		t.Fatalf("EnqueueJob returned error: %v", err)
	}

	if queued.Status != job.JobStatusPending {
		t.Errorf("status = %s, want pending", queued.Status)
	}
	if publisher.topic != job.JobsTopic {
		t.Errorf("published to topic %q, want %q", publisher.topic, job.JobsTopic)
	}
	if len(publisher.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(publisher.messages))
	}

	var msg job.JobMessage
	if err := json.Unmarshal(publisher.messages[0].Payload, &msg); err != nil {
		t.Fatalf("failed to decode published message: %v", err)
	}
	if msg.JobID != queued.ID || msg.TaskType != job.TaskTypeIngest {
		t.Errorf("published message = %+v, want job %d / %s", msg, queued.ID, job.TaskTypeIngest)
	}
}

func TestGetJobNotFound(t *testing.T) {
	svc := job.NewJobService(&fakePublisher{}, newFakeRepository(), watermill.NopLogger{}, nil)

	_, err := svc.GetJob(context.Background(), 99)
	if !errors.Is(err, job.ErrJobNotFound) {
		t.Errorf("GetJob error = %v, want ErrJobNotFound", err)
	}
}

func TestProcessJobMessageUnknownJob(t *testing.T) {
	svc := job.NewJobService(&fakePublisher{}, newFakeRepository(), watermill.NopLogger{}, nil)

	payload, _ := json.Marshal(job.JobMessage{JobID: 7, TaskType: job.TaskTypeIngest})
	err := svc.ProcessJobMessage(message.NewMessage(watermill.NewUUID(), payload))
	if !errors.Is(err, job.ErrJobNotFound) {
		t.Errorf("ProcessJobMessage error = %v, want ErrJobNotFound", err)
	}
}

func TestProcessJobMessageUnknownTaskType(t *testing.T) {
	repo := newFakeRepository()
	svc := job.NewJobService(&fakePublisher{}, repo, watermill.NopLogger{}, nil)

	queued, err := repo.Create(context.Background(), "reindex", nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	payload, _ := json.Marshal(job.JobMessage{JobID: queued.ID, TaskType: "reindex"})
	if err := svc.ProcessJobMessage(message.NewMessage(watermill.NewUUID(), payload)); err == nil {
		t.Fatal("expected error for unknown task type")
	}

	if queued.Status != job.JobStatusFailed {
		t.Errorf("job status = %s, want failed", queued.Status)
	}
	if queued.Error == nil {
		t.Error("failed job must record its error")
	}
}
