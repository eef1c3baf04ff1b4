package vector

import (
	"context"
	"errors"
)

var (
	ErrUnsupportedStore    = errors.New("unsupported vector store")
	ErrMissingURI          = errors.New("mongodb uri not set")
	ErrDimensionMismatch   = errors.New("embedding dimension mismatch")
	ErrInvalidSearchParams = errors.New("limit exceeds candidate pool size")
)

type StoreType string

const (
	StoreTypeMongo   StoreType = "mongo"
	StoreTypeChromem StoreType = "chromem"
	StoreTypeQdrant  StoreType = "qdrant"
)

type Config struct {
	Store   StoreType     `yaml:"store"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Chromem ChromemConfig `yaml:"chromem"`
	Qdrant  QdrantConfig  `yaml:"qdrant"`
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	Index      string `yaml:"index"`
}

type ChromemConfig struct {
	Persistent bool   `yaml:"persistent"`
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
}

// Store is a document collection backed by a vector search index.
// Similarity scoring and ordering belong to the backend.
type Store interface {
	InsertMany(ctx context.Context, docs []Document) error
	Search(ctx context.Context, vector []float32, params SearchParams) ([]SearchResult, error)
	Count(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}

// Document is the stored entity. Embedding length is fixed per process.
type Document struct {
	Text      string    `json:"text" bson:"text"`
	Embedding []float32 `json:"embedding,omitempty" bson:"embedding"`
}

type SearchParams struct {
	Index         string
	Path          string
	NumCandidates int
	Limit         int
}

type SearchResult struct {
	Text  string  `json:"text" bson:"text"`
	Score float64 `json:"score" bson:"score"`
}
