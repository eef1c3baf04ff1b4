package mongovec

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/flarexio/mongovec/embedding"
	"github.com/flarexio/mongovec/vector"
)

// Service defines the core logic of mongovec.
type Service interface {

	// Close releases the store connection.
	Close() error

	// Insert embeds every text and writes all documents as one batch.
	// Repeated calls with the same texts produce duplicates.
	Insert(ctx context.Context, texts []string) (int, error)

	// Search embeds the query and delegates ranking to the vector index.
	Search(ctx context.Context, query string, k ...int) ([]SearchResult, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int64, error)

	// Seed inserts texts only when the store is empty.
	Seed(ctx context.Context, texts []string) (int, error)
}

type ServiceMiddleware func(Service) Service

func NewService(cfg Config, embedder embedding.Embedder, store vector.Store) Service {
	log := zap.L().With(
		zap.String("service", "mongovec"),
	)

	cfg.ApplyDefaults()

	return &service{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		log:      log,
	}
}

type service struct {
	embedder embedding.Embedder
	store    vector.Store

	cfg Config
	log *zap.Logger
}

func (svc *service) Close() error {
	return svc.store.Close(context.Background())
}

func (svc *service) embed(ctx context.Context, text string) ([]float32, error) {
	v, err := svc.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if len(v) != svc.embedder.Dimensions() {
		return nil, fmt.Errorf("%w: got %d, want %d",
			ErrDimensionMismatch, len(v), svc.embedder.Dimensions())
	}

	return v, nil
}

func (svc *service) Insert(ctx context.Context, texts []string) (int, error) {
	if len(texts) == 0 {
		return 0, ErrNoTexts
	}

	docs := make([]Document, len(texts))
	for i, text := range texts {
		if text == "" {
			return 0, fmt.Errorf("%w at position %d", ErrEmptyText, i)
		}

		v, err := svc.embed(ctx, text)
		if err != nil {
			return 0, err
		}

		docs[i] = Document{
			Text:      text,
			Embedding: v,
		}
	}

	if err := svc.store.InsertMany(ctx, docs); err != nil {
		return 0, err
	}

	return len(docs), nil
}

func (svc *service) Search(ctx context.Context, query string, k ...int) ([]SearchResult, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	n := svc.cfg.Search.TopK
	if len(k) > 0 && k[0] > 0 {
		n = k[0]
	}

	v, err := svc.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	params := vector.SearchParams{
		Index:         svc.cfg.Vector.Mongo.Index,
		NumCandidates: svc.cfg.Search.NumCandidates,
		Limit:         n,
	}

	results, err := svc.store.Search(ctx, v, params)
	if err != nil {
		return nil, err
	}

	if results == nil {
		results = make([]SearchResult, 0)
	}

	return results, nil
}

func (svc *service) Count(ctx context.Context) (int64, error) {
	return svc.store.Count(ctx)
}

func (svc *service) Seed(ctx context.Context, texts []string) (int, error) {
	count, err := svc.store.Count(ctx)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		svc.log.Debug("store not empty, skipping seed",
			zap.String("action", "seed"),
			zap.Int64("count", count),
		)

		return 0, nil
	}

	return svc.Insert(ctx, texts)
}
