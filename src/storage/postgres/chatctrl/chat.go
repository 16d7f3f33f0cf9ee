package chatctrl

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"medrag/src/core/assistant"
)

// ChatMessage is the persisted form of an assistant.ChatMessage
type ChatMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	SessionID string    `gorm:"not null;index;column:session_id"`
	MessageID string    `gorm:"not null;uniqueIndex;column:message_id"`
	Content   string    `gorm:"not null"`
	Role      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// ChatService implements assistant.HistoryStore on Postgres
type ChatService struct {
	db *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

func (s *ChatService) SaveMessage(ctx context.Context, msg *assistant.ChatMessage) error {
	record := &ChatMessage{
		SessionID: msg.SessionID,
		MessageID: msg.MessageID,
		Content:   msg.Content,
		Role:      msg.Role,
		CreatedAt: msg.CreatedAt,
	}

	result := s.db.WithContext(ctx).Create(record)
	if result.Error != nil {
		return fmt.Errorf("failed to save chat message: %v", result.Error)
	}

	return nil
}

func (s *ChatService) ListMessages(ctx context.Context, sessionID string) ([]assistant.ChatMessage, error) {
	var records []ChatMessage
	result := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list chat messages: %v", result.Error)
	}

	messages := make([]assistant.ChatMessage, 0, len(records))
	for _, r := range records {
		messages = append(messages, assistant.ChatMessage{
			SessionID: r.SessionID,
			MessageID: r.MessageID,
			Content:   r.Content,
			Role:      r.Role,
			CreatedAt: r.CreatedAt,
		})
	}

	return messages, nil
}
