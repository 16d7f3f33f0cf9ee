package ingest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"medrag/src/infrastructure/integrations/ollama"
	"medrag/src/infrastructure/log"
	"medrag/src/storage/elastic"
	"medrag/src/storage/minioctrl"
	"medrag/src/storage/postgres/chunkctrl"
	"medrag/src/storage/postgres/documentctrl"
	"medrag/src/storage/weaviate"
)

// Pipeline turns raw documents into indexed passages: split into chunks,
// embed each chunk, store vectors in Weaviate, text in Elasticsearch, chunk
// objects in MinIO, and metadata in Postgres.
type Pipeline struct {
	documents  *documentctrl.DocumentService
	chunks     *chunkctrl.ChunkService
	objects    *minioctrl.MinioService
	vectors    *weaviate.SDK
	keywords   *elastic.Index
	llm        *ollama.Client
	embedModel string

	chunkTokens  int
	chunkOverlap int

	// OnChunk, when set, is called once per processed chunk (progress reporting)
	OnChunk func()
}

func NewPipeline(
	documents *documentctrl.DocumentService,
	chunks *chunkctrl.ChunkService,
	objects *minioctrl.MinioService,
	vectors *weaviate.SDK,
	keywords *elastic.Index,
	llm *ollama.Client,
	embedModel string,
	chunkTokens, chunkOverlap int,
) *Pipeline {
	if chunkTokens <= 0 {
		chunkTokens = DefaultChunkTokens
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}

	return &Pipeline{
		documents:    documents,
		chunks:       chunks,
		objects:      objects,
		vectors:      vectors,
		keywords:     keywords,
		llm:          llm,
		embedModel:   embedModel,
		chunkTokens:  chunkTokens,
		chunkOverlap: chunkOverlap,
	}
}

// EnsureTargets creates the buckets, vector class, and keyword index the
// pipeline writes to.
func (p *Pipeline) EnsureTargets(ctx context.Context) error {
	if err := p.objects.EnsureBucketExists(ctx, minioctrl.DocumentsBucket); err != nil {
		return fmt.Errorf("failed to ensure documents bucket exists: %w", err)
	}
	if err := p.objects.EnsureBucketExists(ctx, minioctrl.ChunksBucket); err != nil {
		return fmt.Errorf("failed to ensure chunks bucket exists: %w", err)
	}
	if err := p.vectors.EnsurePassageClass(ctx); err != nil {
		return fmt.Errorf("failed to ensure passage class exists: %w", err)
	}
	if err := p.keywords.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("failed to ensure keyword index exists: %w", err)
	}
	return nil
}

// IngestFile stores a raw document and runs the full pipeline over it.
// Returns the document record and the number of chunks produced.
func (p *Pipeline) IngestFile(ctx context.Context, filename string, content []byte) (*documentctrl.Document, int, error) {
	objectName := fmt.Sprintf("%s-%s", uuid.New().String(), filename)
	if err := p.objects.PutObject(ctx, minioctrl.DocumentsBucket, objectName, content); err != nil {
		return nil, 0, fmt.Errorf("failed to store document object: %w", err)
	}

	document, err := p.documents.Create(ctx, filename, fmt.Sprintf("%s/%s", minioctrl.DocumentsBucket, objectName))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to record document: %w", err)
	}

	count, err := p.Process(ctx, document, content)
	if err != nil {
		return nil, 0, err
	}

	return document, count, nil
}

// Process chunks, embeds, and indexes an already-recorded document.
func (p *Pipeline) Process(ctx context.Context, document *documentctrl.Document, content []byte) (int, error) {
	pieces, err := SplitText(string(content), p.chunkTokens, p.chunkOverlap)
	if err != nil {
		return 0, fmt.Errorf("failed to split document: %w", err)
	}

	documentID := strconv.FormatInt(document.ID, 10)
	objects := make([]weaviate.VectorObject, 0, len(pieces))

	for order, piece := range pieces {
		chunkID := uuid.New().String()

		objectName := fmt.Sprintf("%s/%s", documentID, chunkID)
		if err := p.objects.PutObject(ctx, minioctrl.ChunksBucket, objectName, []byte(piece)); err != nil {
			return 0, fmt.Errorf("failed to store chunk object: %w", err)
		}

		objectURL := fmt.Sprintf("%s/%s", minioctrl.ChunksBucket, objectName)
		if _, err := p.chunks.Create(ctx, document.ID, chunkID, objectURL, order); err != nil {
			return 0, fmt.Errorf("failed to record chunk: %w", err)
		}

		embedding, err := p.llm.GetEmbedding(ctx, p.embedModel, piece)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk %s: %w", chunkID, err)
		}

		objects = append(objects, weaviate.VectorObject{
			Vector: embedding,
			Properties: map[string]interface{}{
				"content":    piece,
				"source":     document.Filename,
				"documentId": documentID,
				"chunkIndex": order,
			},
		})

		if err := p.keywords.IndexPassage(ctx, chunkID, elastic.PassageDoc{
			Content:    piece,
			Source:     document.Filename,
			DocumentID: documentID,
			ChunkIndex: order,
		}); err != nil {
			return 0, fmt.Errorf("failed to index chunk %s: %w", chunkID, err)
		}

		if p.OnChunk != nil {
			p.OnChunk()
		}
	}

	if len(objects) > 0 {
		if err := p.vectors.BatchAddVectors(ctx, objects); err != nil {
			return 0, fmt.Errorf("failed to store vectors: %w", err)
		}
	}

	if err := p.documents.SetChunkCount(ctx, document.ID, len(pieces)); err != nil {
		return 0, err
	}

	log.Info("document ingested", "document_id", document.ID, "filename", document.Filename, "chunks", len(pieces))
	return len(pieces), nil
}

// DeleteDocument removes a document and every trace of it: vectors, keyword
// entries, chunk objects, chunk rows, the raw object, and the document row.
func (p *Pipeline) DeleteDocument(ctx context.Context, document *documentctrl.Document) error {
	documentID := strconv.FormatInt(document.ID, 10)

	if err := p.vectors.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete vectors: %w", err)
	}
	if err := p.keywords.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete keyword entries: %w", err)
	}

	chunks, err := p.chunks.GetByDocumentID(ctx, document.ID)
	if err != nil {
		return fmt.Errorf("failed to list chunks: %w", err)
	}
	if len(chunks) > 0 {
		objectNames := make([]string, 0, len(chunks))
		for _, chunk := range chunks {
			if _, objectName := p.objects.GetBucketAndObjectFromURL(chunk.ObjectURL); objectName != "" {
				objectNames = append(objectNames, objectName)
			}
		}
		if err := p.objects.DeleteObjects(ctx, minioctrl.ChunksBucket, objectNames); err != nil {
			return fmt.Errorf("failed to delete chunk objects: %w", err)
		}
	}
	if err := p.chunks.DeleteByDocumentID(ctx, document.ID); err != nil {
		return fmt.Errorf("failed to delete chunk records: %w", err)
	}

	if bucket, objectName := p.objects.GetBucketAndObjectFromURL(document.ObjectURL); bucket != "" {
		if err := p.objects.DeleteObject(ctx, bucket, objectName); err != nil {
			return fmt.Errorf("failed to delete document object: %w", err)
		}
	}

	if err := p.documents.Delete(ctx, document.ID); err != nil {
		return err
	}

	log.Info("document deleted", "document_id", document.ID, "filename", document.Filename)
	return nil
}

// CountChunks reports how many chunks a document would produce, for progress bars.
func (p *Pipeline) CountChunks(content []byte) (int, error) {
	pieces, err := SplitText(string(content), p.chunkTokens, p.chunkOverlap)
	if err != nil {
		return 0, err
	}
	return len(pieces), nil
}
