package assistant

import (
	"context"
	"database/sql"

	"medrag/src/infrastructure/integrations/ollama"
	"medrag/src/storage/elastic"
	"medrag/src/storage/weaviate"
)

// SystemService reports the health of the assistant's dependencies
type SystemService struct {
	db       *sql.DB
	vectors  *weaviate.SDK
	keywords *elastic.Index
	llm      *ollama.Client
}

func NewSystemService(db *sql.DB, vectors *weaviate.SDK, keywords *elastic.Index, llm *ollama.Client) *SystemService {
	return &SystemService{
		db:       db,
		vectors:  vectors,
		keywords: keywords,
		llm:      llm,
	}
}

func (s *SystemService) CheckHealth(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{Status: "healthy"}
	status.Components.Postgres = StatusDown
	status.Components.Weaviate = StatusDown
	status.Components.Elasticsearch = StatusDown
	status.Components.Ollama = StatusDown

	if err := s.db.PingContext(ctx); err == nil {
		status.Components.Postgres = StatusUp
	}

	if err := s.vectors.Ping(ctx); err == nil {
		status.Components.Weaviate = StatusUp
	}

	if err := s.keywords.Ping(ctx); err == nil {
		status.Components.Elasticsearch = StatusUp
	}

	if _, err := s.llm.Models(ctx); err == nil {
		status.Components.Ollama = StatusUp
	}

	if status.Components.Postgres == StatusDown ||
		status.Components.Weaviate == StatusDown ||
		status.Components.Elasticsearch == StatusDown ||
		status.Components.Ollama == StatusDown {
		status.Status = "unhealthy"
	}

	return status, nil
}
