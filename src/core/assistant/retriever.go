package assistant

import (
	"context"
	"fmt"
	"strings"

	"medrag/src/infrastructure/integrations/ollama"
	"medrag/src/storage/elastic"
	"medrag/src/storage/weaviate"
)

// passageFields are the Weaviate properties fetched for every query
var passageFields = []string{"content", "source", "documentId", "chunkIndex"}

// Retriever answers passage queries against the vector and keyword indexes
type Retriever struct {
	vectors    *weaviate.SDK
	keywords   *elastic.Index
	llm        *ollama.Client
	embedModel string
}

func NewRetriever(vectors *weaviate.SDK, keywords *elastic.Index, llm *ollama.Client, embedModel string) *Retriever {
	return &Retriever{
		vectors:    vectors,
		keywords:   keywords,
		llm:        llm,
		embedModel: embedModel,
	}
}

// Retrieve implements PassageRetriever
func (r *Retriever) Retrieve(ctx context.Context, query string, mode SearchMode, limit int) ([]Passage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuestion
	}

	switch mode {
	case ModeVector, "":
		return r.searchVector(ctx, query, limit)
	case ModeKeyword:
		return r.searchKeyword(ctx, query, limit)
	case ModeHybrid:
		return r.searchHybrid(ctx, query, limit)
	default:
		return nil, ErrInvalidMode
	}
}

func (r *Retriever) searchVector(ctx context.Context, query string, limit int) ([]Passage, error) {
	embedding, err := r.llm.GetEmbedding(ctx, r.embedModel, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get query embedding: %w", err)
	}

	results, err := r.vectors.QueryVectors(ctx, embedding, weaviate.QueryConfig{
		Fields: passageFields,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search weaviate: %w", err)
	}

	return passagesFromResults(results), nil
}

func (r *Retriever) searchKeyword(ctx context.Context, query string, limit int) ([]Passage, error) {
	hits, err := r.keywords.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search elasticsearch: %w", err)
	}

	passages := make([]Passage, 0, len(hits))
	for _, hit := range hits {
		passages = append(passages, Passage{
			Content:    hit.Passage.Content,
			Source:     hit.Passage.Source,
			DocumentID: hit.Passage.DocumentID,
			ChunkIndex: hit.Passage.ChunkIndex,
			Score:      hit.Score,
		})
	}

	return passages, nil
}

// searchHybrid fuses two rankings with reciprocal rank fusion: Weaviate's own
// hybrid query (vector similarity blended with its internal BM25) and the
// standalone Elasticsearch index. Both sides are over-fetched so fusion has
// enough candidates to reorder.
func (r *Retriever) searchHybrid(ctx context.Context, query string, limit int) ([]Passage, error) {
	fetch := limit * 2
	if fetch < 10 {
		fetch = 10
	}

	embedding, err := r.llm.GetEmbedding(ctx, r.embedModel, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get query embedding: %w", err)
	}

	hybridConfig := weaviate.DefaultHybridConfig(query)
	hybridConfig.Fields = passageFields
	hybridConfig.Limit = fetch
	hybridResults, err := r.vectors.QueryHybrid(ctx, embedding, hybridConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to run hybrid query: %w", err)
	}

	keywordResults, err := r.searchKeyword(ctx, query, fetch)
	if err != nil {
		return nil, err
	}

	return FuseRanked(limit, passagesFromResults(hybridResults), keywordResults), nil
}

// passagesFromResults converts raw Weaviate results into passages
func passagesFromResults(results []weaviate.QueryResult) []Passage {
	passages := make([]Passage, 0, len(results))
	for _, result := range results {
		p := Passage{Score: result.Score}
		if content, ok := result.Properties["content"].(string); ok {
			p.Content = content
		}
		if source, ok := result.Properties["source"].(string); ok {
			p.Source = source
		}
		if documentID, ok := result.Properties["documentId"].(string); ok {
			p.DocumentID = documentID
		}
		if chunkIndex, ok := result.Properties["chunkIndex"].(float64); ok {
			p.ChunkIndex = int(chunkIndex)
		}
		passages = append(passages, p)
	}

	return passages
}
