package chromem

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/flarexio/mongovec/vector"
)

var ErrEmbeddingRequired = errors.New("document embedding required")

// NewChromemStore opens an in-process collection. Vectors are always
// supplied by the caller, so the collection carries no embedding function.
func NewChromemStore(cfg vector.ChromemConfig) (*ChromemStore, error) {
	var db *chromem.DB
	if !cfg.Persistent {
		db = chromem.NewDB()
	} else {
		d, err := chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, err
		}

		db = d
	}

	c, err := db.GetOrCreateCollection(cfg.Collection, nil, refuseEmbedding)
	if err != nil {
		return nil, err
	}

	return &ChromemStore{db, c}, nil
}

func refuseEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, ErrEmbeddingRequired
}

type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

func (s *ChromemStore) InsertMany(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	documents := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		if len(doc.Embedding) == 0 {
			return ErrEmbeddingRequired
		}

		documents[i] = chromem.Document{
			ID:        uuid.NewString(),
			Embedding: doc.Embedding,
			Content:   doc.Text,
		}
	}

	return s.collection.AddDocuments(ctx, documents, 1)
}

func (s *ChromemStore) Search(ctx context.Context, queryVector []float32, params vector.SearchParams) ([]vector.SearchResult, error) {
	// chromem rejects nResults outside [1, Count]
	n := params.Limit
	if count := s.collection.Count(); n > count {
		n = count
	}

	if n <= 0 {
		return []vector.SearchResult{}, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, queryVector, n, nil, nil)
	if err != nil {
		return nil, err
	}

	out := make([]vector.SearchResult, len(results))
	for i, result := range results {
		out[i] = vector.SearchResult{
			Text:  result.Content,
			Score: float64(result.Similarity),
		}
	}

	return out, nil
}

func (s *ChromemStore) Count(ctx context.Context) (int64, error) {
	return int64(s.collection.Count()), nil
}

func (s *ChromemStore) Close(ctx context.Context) error {
	return nil
}
