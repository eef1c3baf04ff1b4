package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/flarexio/mongovec"
	"github.com/flarexio/mongovec/embedding"
	"github.com/flarexio/mongovec/persistence/chromem"
	"github.com/flarexio/mongovec/persistence/mongo"
	"github.com/flarexio/mongovec/persistence/qdrant"
	"github.com/flarexio/mongovec/vector"
)

// loadConfig layers flags and their env sources over the optional YAML
// file, then fills defaults.
func loadConfig(cmd *cli.Command) (mongovec.Config, error) {
	var cfg mongovec.Config

	if path := cmd.String("config"); path != "" {
		c, err := mongovec.LoadConfig(path)
		if err != nil {
			return cfg, err
		}

		cfg = c
	}

	if cmd.IsSet("store") {
		cfg.Vector.Store = vector.StoreType(cmd.String("store"))
	}

	if cmd.IsSet("mongodb-uri") {
		cfg.Vector.Mongo.URI = cmd.String("mongodb-uri")
	}

	if cmd.IsSet("mongodb-db") {
		cfg.Vector.Mongo.Database = cmd.String("mongodb-db")
	}

	if cmd.IsSet("mongodb-collection") {
		cfg.Vector.Mongo.Collection = cmd.String("mongodb-collection")
	}

	if cmd.IsSet("mongodb-vector-index") {
		cfg.Vector.Mongo.Index = cmd.String("mongodb-vector-index")
	}

	if cmd.IsSet("chromem-path") {
		cfg.Vector.Chromem.Persistent = true
		cfg.Vector.Chromem.Path = cmd.String("chromem-path")
	}

	if cmd.IsSet("qdrant-host") {
		cfg.Vector.Qdrant.Host = cmd.String("qdrant-host")
	}

	if cmd.IsSet("qdrant-port") {
		cfg.Vector.Qdrant.Port = int(cmd.Int("qdrant-port"))
	}

	if cmd.IsSet("embedding-provider") {
		cfg.Embedding.Provider = embedding.Provider(cmd.String("embedding-provider"))
	}

	if cmd.IsSet("embedding-model") {
		cfg.Embedding.Model = cmd.String("embedding-model")
	}

	if cmd.IsSet("embedding-url") {
		cfg.Embedding.BaseURL = cmd.String("embedding-url")
	}

	if cmd.IsSet("openai-api-key") {
		cfg.Embedding.APIKey = cmd.String("openai-api-key")
	}

	if cmd.IsSet("num-candidates") {
		cfg.Search.NumCandidates = int(cmd.Int("num-candidates"))
	}

	if cmd.IsSet("top-k") {
		cfg.Search.TopK = int(cmd.Int("top-k"))
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func newLogger(cmd *cli.Command) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !cmd.Bool("verbose") {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	return cfg.Build()
}

func openStore(ctx context.Context, cfg vector.Config, dimensions int) (vector.Store, error) {
	switch cfg.Store {
	case vector.StoreTypeMongo:
		return mongo.NewMongoStore(ctx, cfg.Mongo)

	case vector.StoreTypeChromem:
		return chromem.NewChromemStore(cfg.Chromem)

	case vector.StoreTypeQdrant:
		return qdrant.NewQdrantStore(ctx, cfg.Qdrant, dimensions)

	default:
		return nil, fmt.Errorf("%w: %s", vector.ErrUnsupportedStore, cfg.Store)
	}
}

type components struct {
	cfg      mongovec.Config
	embedder embedding.Embedder
	store    vector.Store
	svc      mongovec.Service
}

// build constructs the single service context used by every command.
func build(ctx context.Context, cmd *cli.Command, log *zap.Logger) (*components, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	embedder, err := embedding.NewEmbedder(ctx, cfg.Embedding)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg.Vector, embedder.Dimensions())
	if err != nil {
		return nil, err
	}

	svc := mongovec.NewService(cfg, embedder, store)
	svc = mongovec.LoggingMiddleware(log)(svc)

	return &components{
		cfg:      cfg,
		embedder: embedder,
		store:    store,
		svc:      svc,
	}, nil
}

func printBanner(w io.Writer, c *components) {
	switch c.cfg.Vector.Store {
	case vector.StoreTypeMongo:
		fmt.Fprintln(w, "Connected to MongoDB")
		fmt.Fprintf(w, "Database: %s\n", c.cfg.Vector.Mongo.Database)
		fmt.Fprintf(w, "Collection: %s\n", c.cfg.Vector.Mongo.Collection)
		fmt.Fprintf(w, "Vector Index: %s\n", c.cfg.Vector.Mongo.Index)

	case vector.StoreTypeChromem:
		fmt.Fprintln(w, "Using local chromem store")
		fmt.Fprintf(w, "Collection: %s\n", c.cfg.Vector.Chromem.Collection)

	case vector.StoreTypeQdrant:
		fmt.Fprintln(w, "Connected to Qdrant")
		fmt.Fprintf(w, "Collection: %s\n", c.cfg.Vector.Qdrant.Collection)
	}

	fmt.Fprintf(w, "Embedding Dimension: %d\n\n", c.embedder.Dimensions())
}
