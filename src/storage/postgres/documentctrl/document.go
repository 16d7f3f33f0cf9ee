package documentctrl

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Document is the metadata record of an ingested source document
type Document struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Filename   string    `gorm:"not null" json:"filename"`
	ObjectURL  string    `gorm:"not null;column:object_url" json:"object_url"` // bucket name + object name
	ChunkCount int       `gorm:"not null;default:0" json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type DocumentService struct {
	db        *gorm.DB
	snowflake *snowflake.Node
}

func NewDocumentService(db *gorm.DB) (*DocumentService, error) {
	node, err := snowflake.NewNode(1) // Node number 1 for documents
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %v", err)
	}

	return &DocumentService{
		db:        db,
		snowflake: node,
	}, nil
}

func (s *DocumentService) GetByID(ctx context.Context, id int64) (*Document, error) {
	var document Document
	result := s.db.WithContext(ctx).First(&document, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %v", result.Error)
	}
	return &document, nil
}

// List returns a paginated list of documents
func (s *DocumentService) List(ctx context.Context, limit int, offset int) ([]Document, error) {
	var documents []Document

	result := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&documents)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list documents: %v", result.Error)
	}

	return documents, nil
}

func (s *DocumentService) Create(ctx context.Context, filename, objectURL string) (*Document, error) {
	document := &Document{
		ID:        s.snowflake.Generate().Int64(),
		Filename:  filename,
		ObjectURL: objectURL,
	}

	result := s.db.WithContext(ctx).Create(document)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create document: %v", result.Error)
	}

	return document, nil
}

// SetChunkCount records how many chunks an ingested document produced
func (s *DocumentService) SetChunkCount(ctx context.Context, id int64, count int) error {
	result := s.db.WithContext(ctx).Model(&Document{}).Where("id = ?", id).Update("chunk_count", count)
	if result.Error != nil {
		return fmt.Errorf("failed to update chunk count: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document not found: %d", id)
	}
	return nil
}

func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&Document{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete document: %v", result.Error)
	}
	return nil
}
