package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
)

// DefaultIndex is the index holding passage text for BM25 keyword search.
const DefaultIndex = "medrag-passages"

const indexMapping = `{
  "mappings": {
    "properties": {
      "content":    { "type": "text" },
      "source":     { "type": "keyword" },
      "documentId": { "type": "keyword" },
      "chunkIndex": { "type": "integer" }
    }
  }
}`

// PassageDoc is the document shape stored in the keyword index
type PassageDoc struct {
	Content    string `json:"content"`
	Source     string `json:"source"`
	DocumentID string `json:"documentId"`
	ChunkIndex int    `json:"chunkIndex"`
}

// Hit is a single keyword search result
type Hit struct {
	ID      string
	Score   float64
	Passage PassageDoc
}

// Index wraps an Elasticsearch index of passages
type Index struct {
	client *elasticsearch.Client
	name   string
}

// NewIndex creates a keyword index client. An empty name selects DefaultIndex.
func NewIndex(addresses []string, name string) (*Index, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	if name == "" {
		name = DefaultIndex
	}

	return &Index{
		client: es,
		name:   name,
	}, nil
}

// EnsureIndex creates the index with its mapping if it does not exist
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists(
		[]string{i.name},
		i.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	createRes, err := i.client.Indices.Create(
		i.name,
		i.client.Indices.Create.WithContext(ctx),
		i.client.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	return nil
}

// IndexPassage stores a passage document under the given ID
func (i *Index) IndexPassage(ctx context.Context, id string, doc PassageDoc) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal passage: %w", err)
	}

	res, err := i.client.Index(
		i.name,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(id),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index passage: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to index passage: %s", res.String())
	}

	return nil
}

// Search runs a BM25 match query over passage content
func (i *Index) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}

	searchBody := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"content": query,
			},
		},
	}

	body, err := json.Marshal(searchBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.name),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search passages: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("failed to search passages: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string          `json:"_id"`
				Score  float64         `json:"_score"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		var doc PassageDoc
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode passage document: %w", err)
		}
		hits = append(hits, Hit{
			ID:      h.ID,
			Score:   h.Score,
			Passage: doc,
		})
	}

	return hits, nil
}

// DeleteByDocument removes all passages of a document from the keyword index
func (i *Index) DeleteByDocument(ctx context.Context, documentID string) error {
	deleteBody := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"documentId": documentID,
			},
		},
	}

	body, err := json.Marshal(deleteBody)
	if err != nil {
		return fmt.Errorf("failed to marshal delete body: %w", err)
	}

	res, err := i.client.DeleteByQuery(
		[]string{i.name},
		bytes.NewReader(body),
		i.client.DeleteByQuery.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to delete passages: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to delete passages: %s", res.String())
	}

	return nil
}

// Ping verifies the Elasticsearch instance is reachable
func (i *Index) Ping(ctx context.Context) error {
	res, err := i.client.Info(i.client.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch unreachable: %w", err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.IsError() {
		return fmt.Errorf("elasticsearch unhealthy: %s", res.Status())
	}

	return nil
}
