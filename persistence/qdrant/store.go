package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/flarexio/mongovec/vector"
)

const defaultPort = 6334

// NewQdrantStore connects to Qdrant and creates the collection with the
// given vector size when it does not exist yet.
func NewQdrantStore(ctx context.Context, cfg vector.QdrantConfig, dimensions int) (*QdrantStore, error) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, err
	}

	s := &QdrantStore{
		client:     client,
		collection: cfg.Collection,
	}

	if err := s.ensureCollection(ctx, dimensions); err != nil {
		client.Close()
		return nil, err
	}

	return s, nil
}

type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

func (s *QdrantStore) ensureCollection(ctx context.Context, dimensions int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(dimensions),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	return nil
}

func (s *QdrantStore) InsertMany(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	pts := make([]*qdrant.PointStruct, len(docs))
	for i, doc := range docs {
		pts[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.NewString()),
			Vectors: qdrant.NewVectors(doc.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text": doc.Text,
			}),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         pts,
		Wait:           qdrant.PtrOf(true),
	})

	return err
}

// Search maps the candidate pool onto the HNSW ef parameter.
func (s *QdrantStore) Search(ctx context.Context, queryVector []float32, params vector.SearchParams) ([]vector.SearchResult, error) {
	limit := uint64(params.Limit)

	query := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}

	if params.NumCandidates > 0 {
		query.Params = &qdrant.SearchParams{
			HnswEf: qdrant.PtrOf(uint64(params.NumCandidates)),
		}
	}

	points, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]vector.SearchResult, len(points))
	for i, p := range points {
		var text string
		if v, ok := p.Payload["text"]; ok {
			text = v.GetStringValue()
		}

		results[i] = vector.SearchResult{
			Text:  text,
			Score: float64(p.Score),
		}
	}

	return results, nil
}

func (s *QdrantStore) Count(ctx context.Context) (int64, error) {
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, err
	}

	return int64(n), nil
}

func (s *QdrantStore) Close(ctx context.Context) error {
	return s.client.Close()
}
