package mongovec

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flarexio/mongovec/embedding"
	"github.com/flarexio/mongovec/vector"
)

var (
	ErrNoTexts             = errors.New("no texts to insert")
	ErrEmptyText           = errors.New("empty text")
	ErrEmptyQuery          = errors.New("empty query")
	ErrInvalidSearchParams = vector.ErrInvalidSearchParams
	ErrDimensionMismatch   = vector.ErrDimensionMismatch
	ErrMissingURI          = vector.ErrMissingURI
)

const (
	DefaultDatabase      = "vector_db"
	DefaultCollection    = "documents"
	DefaultIndex         = "vector_index"
	DefaultNumCandidates = 100
	DefaultTopK          = 3
)

// SampleTexts seed an empty store.
var SampleTexts = []string{
	"Python is a popular programming language",
	"MongoDB is a NoSQL database",
	"Vector search enables semantic similarity",
	"Embeddings convert text into vectors",
	"FastAPI is used to build APIs",
}

type Config struct {
	Vector    vector.Config    `yaml:"vector"`
	Embedding embedding.Config `yaml:"embedding"`
	Search    SearchConfig     `yaml:"search"`
}

type SearchConfig struct {
	NumCandidates int `yaml:"numCandidates"`
	TopK          int `yaml:"topK"`
}

type Document = vector.Document

type SearchResult = vector.SearchResult

// LoadConfig decodes a YAML file. Environment references such as
// ${MONGODB_URI} are expanded before decoding.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	bs, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	expanded := os.ExpandEnv(string(bs))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ApplyDefaults fills every unset field with the built-in default.
func (cfg *Config) ApplyDefaults() {
	if cfg.Vector.Store == "" {
		cfg.Vector.Store = vector.StoreTypeMongo
	}

	if cfg.Vector.Mongo.Database == "" {
		cfg.Vector.Mongo.Database = DefaultDatabase
	}

	if cfg.Vector.Mongo.Collection == "" {
		cfg.Vector.Mongo.Collection = DefaultCollection
	}

	if cfg.Vector.Mongo.Index == "" {
		cfg.Vector.Mongo.Index = DefaultIndex
	}

	if cfg.Vector.Chromem.Collection == "" {
		cfg.Vector.Chromem.Collection = DefaultCollection
	}

	if cfg.Vector.Qdrant.Collection == "" {
		cfg.Vector.Qdrant.Collection = DefaultCollection
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = embedding.ProviderOllama
	}

	if cfg.Embedding.Model == "" && cfg.Embedding.Provider == embedding.ProviderOllama {
		cfg.Embedding.Model = embedding.DefaultModel
	}

	if cfg.Search.NumCandidates <= 0 {
		cfg.Search.NumCandidates = DefaultNumCandidates
	}

	if cfg.Search.TopK <= 0 {
		cfg.Search.TopK = DefaultTopK
	}
}

// Validate reports configuration that must stop the process before any
// connection is attempted.
func (cfg Config) Validate() error {
	switch cfg.Vector.Store {
	case vector.StoreTypeMongo:
		if cfg.Vector.Mongo.URI == "" {
			return ErrMissingURI
		}

		if cfg.Search.TopK > cfg.Search.NumCandidates {
			return ErrInvalidSearchParams
		}

	case vector.StoreTypeChromem, vector.StoreTypeQdrant:

	default:
		return vector.ErrUnsupportedStore
	}

	return nil
}
