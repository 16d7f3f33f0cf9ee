package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// PassageClass is the Weaviate class holding embedded document chunks.
const PassageClass = "MedicalPassage"

// SDK encapsulates all Weaviate operations
type SDK struct {
	client *weaviate.Client
}

// NewSDK creates a new instance of SDK
func NewSDK(client *weaviate.Client) *SDK {
	return &SDK{
		client: client,
	}
}

// EnsurePassageClass creates the passage class schema if it does not exist yet.
// Vectorizer is "none": vectors are supplied by the embedding provider.
func (w *SDK) EnsurePassageClass(ctx context.Context) error {
	exists, err := w.classExists(ctx, PassageClass)
	if err != nil {
		return fmt.Errorf("failed to check if class exists: %v", err)
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class: PassageClass,
		Properties: []*models.Property{
			{
				Name:        "content",
				DataType:    []string{"text"},
				Description: "The text of the passage",
			},
			{
				Name:        "source",
				DataType:    []string{"text"},
				Description: "Filename the passage was extracted from",
			},
			{
				Name:        "documentId",
				DataType:    []string{"text"},
				Description: "ID of the source document record",
			},
			{
				Name:        "chunkIndex",
				DataType:    []string{"int"},
				Description: "Order of the passage within its document",
			},
		},
		Vectorizer: "none",
	}

	if err := w.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("failed to create Weaviate class: %v", err)
	}

	return nil
}

// classExists checks if a class exists in the schema
func (w *SDK) classExists(ctx context.Context, className string) (bool, error) {
	schema, err := w.client.Schema().Getter().Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get schema: %v", err)
	}

	for _, class := range schema.Classes {
		if class.Class == className {
			return true, nil
		}
	}

	return false, nil
}

// Ping verifies the Weaviate instance is reachable
func (w *SDK) Ping(ctx context.Context) error {
	if _, err := w.client.Schema().Getter().Do(ctx); err != nil {
		return fmt.Errorf("weaviate unreachable: %v", err)
	}
	return nil
}

// VectorObject represents a single object with its vector and properties
type VectorObject struct {
	Vector     []float32
	Properties map[string]interface{}
}

// BatchAddVectors adds multiple vector objects to the passage class in a single operation
func (w *SDK) BatchAddVectors(ctx context.Context, objects []VectorObject) error {
	objs := make([]*models.Object, len(objects))
	for i, obj := range objects {
		objs[i] = &models.Object{
			Class:      PassageClass,
			Properties: obj.Properties,
			Vector:     obj.Vector,
		}
	}

	batcher := w.client.Batch().ObjectsBatcher()
	resp, err := batcher.WithObjects(objs...).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to batch add vectors: %v", err)
	}
	if len(resp) == 0 {
		return fmt.Errorf("batch operation returned no results")
	}

	return nil
}

// QueryConfig represents configuration for vector similarity search
type QueryConfig struct {
	Fields    []string // Fields to return in the result
	Limit     int      // Maximum number of results
	Distance  float64  // Optional distance threshold
	Certainty float64  // Optional certainty threshold (1/distance)
}

const DefaultQueryLimit = 20

// QueryResult represents a single result from vector similarity search
type QueryResult struct {
	ID         string
	Score      float64 // Distance, certainty, or hybrid score
	Properties map[string]interface{}
}

// QueryVectors performs vector similarity search in the passage class
func (w *SDK) QueryVectors(ctx context.Context, vector []float32, config QueryConfig) ([]QueryResult, error) {
	fields := make([]graphql.Field, len(config.Fields))
	for i, field := range config.Fields {
		fields[i] = graphql.Field{Name: field}
	}
	fields = append(fields, graphql.Field{Name: "_additional { id distance certainty }"})

	nearVectorBuilder := w.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	if config.Distance > 0 {
		nearVectorBuilder.WithDistance(float32(config.Distance))
	}
	if config.Certainty > 0 {
		nearVectorBuilder.WithCertainty(float32(config.Certainty))
	}

	if config.Limit <= 0 {
		config.Limit = DefaultQueryLimit
	}

	result, err := w.client.GraphQL().Get().
		WithClassName(PassageClass).
		WithFields(fields...).
		WithNearVector(nearVectorBuilder).
		WithLimit(config.Limit).
		Do(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %v", err)
	}

	return parseQueryResults(result.Data, "distance"), nil
}

// Count returns the number of passages stored in the class
func (w *SDK) Count(ctx context.Context) (int, error) {
	result, err := w.client.GraphQL().Aggregate().
		WithClassName(PassageClass).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count passages: %v", err)
	}

	aggregate, ok := result.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	objects, ok := aggregate[PassageClass].([]interface{})
	if !ok || len(objects) == 0 {
		return 0, nil
	}
	first, ok := objects[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := first["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)

	return int(count), nil
}

// DeleteByDocument removes every passage belonging to the given document record
func (w *SDK) DeleteByDocument(ctx context.Context, documentID string) error {
	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueText(documentID)

	_, err := w.client.Batch().ObjectsBatchDeleter().
		WithClassName(PassageClass).
		WithWhere(where).
		Do(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete passages: %v", err)
	}

	return nil
}

// parseQueryResults extracts QueryResults out of a GraphQL response payload.
// scoreField selects which _additional member carries the relevance score.
func parseQueryResults(data map[string]models.JSONObject, scoreField string) []QueryResult {
	var queryResults []QueryResult

	getData, ok := data["Get"].(map[string]interface{})
	if !ok {
		return queryResults
	}
	objects, ok := getData[PassageClass].([]interface{})
	if !ok {
		return queryResults
	}

	for _, obj := range objects {
		objMap, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}
		additional, ok := objMap["_additional"].(map[string]interface{})
		if !ok {
			continue
		}

		properties := make(map[string]interface{})
		for k, v := range objMap {
			if k != "_additional" {
				properties[k] = v
			}
		}

		id, _ := additional["id"].(string)
		score, _ := additional[scoreField].(float64)

		queryResults = append(queryResults, QueryResult{
			ID:         id,
			Score:      score,
			Properties: properties,
		})
	}

	return queryResults
}
