package assistant

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmptyQuestion = errors.New("question must not be empty")
	ErrInvalidMode   = errors.New("unknown search mode")
)

// SearchMode selects how passages are retrieved
type SearchMode string

const (
	ModeVector  SearchMode = "vector"
	ModeKeyword SearchMode = "keyword"
	ModeHybrid  SearchMode = "hybrid"
)

// ParseSearchMode validates a mode string; empty selects vector search.
func ParseSearchMode(s string) (SearchMode, error) {
	switch SearchMode(s) {
	case "":
		return ModeVector, nil
	case ModeVector, ModeKeyword, ModeHybrid:
		return SearchMode(s), nil
	default:
		return "", ErrInvalidMode
	}
}

// Passage is a retrieved document chunk with its relevance score
type Passage struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	DocumentID string  `json:"documentId"`
	ChunkIndex int     `json:"chunkIndex"`
	Score      float64 `json:"score"`
}

// ChatMessage represents a message in a chat session
type ChatMessage struct {
	SessionID string    `json:"sessionId"`
	MessageID string    `json:"messageId"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Answer is the structured result of one question
type Answer struct {
	SessionID string    `json:"sessionId"`
	MessageID string    `json:"messageId"`
	Text      string    `json:"text"`
	Sources   []Passage `json:"sources"`
	CreatedAt time.Time `json:"createdAt"`
}

// PassageRetriever finds relevant passages for a query
type PassageRetriever interface {
	Retrieve(ctx context.Context, query string, mode SearchMode, limit int) ([]Passage, error)
}

// Generator produces text from a language model
type Generator interface {
	Generate(ctx context.Context, model, system, prompt string, options map[string]interface{}) (string, error)
}

// HistoryStore persists chat messages per session
type HistoryStore interface {
	SaveMessage(ctx context.Context, msg *ChatMessage) error
	ListMessages(ctx context.Context, sessionID string) ([]ChatMessage, error)
}

// Service is the full assistant surface used by the HTTP handlers and the CLI
type Service interface {
	Answer(ctx context.Context, sessionID, question string) (*Answer, error)
	Search(ctx context.Context, query string, mode SearchMode, limit int) ([]Passage, error)
	History(ctx context.Context, sessionID string) ([]ChatMessage, error)
}

// ComponentStatus represents the status of a system component
type ComponentStatus string

const (
	StatusUp   ComponentStatus = "up"
	StatusDown ComponentStatus = "down"
)

// HealthStatus represents system health status
type HealthStatus struct {
	Status     string `json:"status"`
	Components struct {
		Postgres      ComponentStatus `json:"postgres"`
		Weaviate      ComponentStatus `json:"weaviate"`
		Elasticsearch ComponentStatus `json:"elasticsearch"`
		Ollama        ComponentStatus `json:"ollama"`
	} `json:"components"`
}
