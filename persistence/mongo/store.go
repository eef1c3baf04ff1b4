package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/flarexio/mongovec/vector"
)

const embeddingPath = "embedding"

func NewMongoStore(ctx context.Context, cfg vector.MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, vector.ErrMissingURI
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	collection := client.Database(cfg.Database).Collection(cfg.Collection)

	return &MongoStore{
		client:     client,
		collection: collection,
		index:      cfg.Index,
	}, nil
}

type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	index      string
}

func (s *MongoStore) InsertMany(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	_, err := s.collection.InsertMany(ctx, docs)
	return err
}

func (s *MongoStore) Search(ctx context.Context, queryVector []float32, params vector.SearchParams) ([]vector.SearchResult, error) {
	// $vectorSearch requires numCandidates >= limit
	if params.Limit > params.NumCandidates {
		return nil, vector.ErrInvalidSearchParams
	}

	if params.Index == "" {
		params.Index = s.index
	}

	if params.Path == "" {
		params.Path = embeddingPath
	}

	cursor, err := s.collection.Aggregate(ctx, SearchPipeline(queryVector, params))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := make([]vector.SearchResult, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	return s.collection.CountDocuments(ctx, bson.D{})
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// CreateVectorIndex defines an Atlas vector search index over the
// embedding field. The index is built asynchronously by the server.
func (s *MongoStore) CreateVectorIndex(ctx context.Context, name string, dimensions int, similarity string) (string, error) {
	if name == "" {
		name = s.index
	}

	if similarity == "" {
		similarity = "cosine"
	}

	model := mongo.SearchIndexModel{
		Definition: VectorIndexDefinition(dimensions, similarity),
		Options: options.SearchIndexes().
			SetName(name).
			SetType("vectorSearch"),
	}

	return s.collection.SearchIndexes().CreateOne(ctx, model)
}

// SearchPipeline composes the $vectorSearch stage with a projection that
// drops _id and exposes the index score.
func SearchPipeline(queryVector []float32, params vector.SearchParams) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: params.Index},
			{Key: "queryVector", Value: queryVector},
			{Key: "path", Value: params.Path},
			{Key: "numCandidates", Value: params.NumCandidates},
			{Key: "limit", Value: params.Limit},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "text", Value: 1},
			{Key: "score", Value: bson.D{
				{Key: "$meta", Value: "vectorSearchScore"},
			}},
		}}},
	}
}

func VectorIndexDefinition(dimensions int, similarity string) bson.D {
	return bson.D{
		{Key: "fields", Value: bson.A{
			bson.D{
				{Key: "type", Value: "vector"},
				{Key: "path", Value: embeddingPath},
				{Key: "numDimensions", Value: dimensions},
				{Key: "similarity", Value: similarity},
			},
		}},
	}
}
