package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medrag/src/infrastructure/log"
)

const DefaultTopK = 4

// Chain sequences retrieval, prompt formatting, and generation for one turn
type Chain struct {
	retriever PassageRetriever
	llm       Generator
	history   HistoryStore
	chatModel string
	topK      int
	mode      SearchMode
}

func NewChain(retriever PassageRetriever, llm Generator, history HistoryStore, chatModel string, opts ...Option) *Chain {
	c := &Chain{
		retriever: retriever,
		llm:       llm,
		history:   history,
		chatModel: chatModel,
		topK:      DefaultTopK,
		mode:      ModeVector,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type Option func(c *Chain)

func WithTopK(k int) Option {
	return func(c *Chain) {
		if k > 0 {
			c.topK = k
		}
	}
}

func WithSearchMode(mode SearchMode) Option {
	return func(c *Chain) {
		c.mode = mode
	}
}

// Answer runs the full chain for one user question and records both sides of
// the exchange in the session history.
func (c *Chain) Answer(ctx context.Context, sessionID, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	if err := c.history.SaveMessage(ctx, &ChatMessage{
		SessionID: sessionID,
		MessageID: uuid.New().String(),
		Content:   question,
		Role:      "user",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	passages, err := c.retriever.Retrieve(ctx, question, c.mode, c.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve passages: %w", err)
	}
	log.Debug("retrieved passages", "count", len(passages), "mode", string(c.mode))

	system, prompt, err := BuildPrompt(question, passages)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	completion, err := c.llm.Generate(ctx, c.chatModel, system, prompt, map[string]interface{}{
		"temperature": 0.7,
		"top_p":       0.9,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate completion: %w", err)
	}

	answer := &Answer{
		SessionID: sessionID,
		MessageID: uuid.New().String(),
		Text:      strings.TrimSpace(completion),
		Sources:   passages,
		CreatedAt: time.Now().UTC(),
	}

	if err := c.history.SaveMessage(ctx, &ChatMessage{
		SessionID: answer.SessionID,
		MessageID: answer.MessageID,
		Content:   answer.Text,
		Role:      "assistant",
		CreatedAt: answer.CreatedAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	return answer, nil
}

// Search exposes raw passage retrieval
func (c *Chain) Search(ctx context.Context, query string, mode SearchMode, limit int) ([]Passage, error) {
	if limit <= 0 {
		limit = c.topK
	}
	if mode == "" {
		mode = c.mode
	}
	return c.retriever.Retrieve(ctx, query, mode, limit)
}

// History returns the messages of a session in chronological order
func (c *Chain) History(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	return c.history.ListMessages(ctx, sessionID)
}
