package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/flarexio/mongovec"
	"github.com/flarexio/mongovec/persistence/mongo"
	"github.com/flarexio/mongovec/repl"

	mcpE "github.com/flarexio/mongovec/mcp"
	httpT "github.com/flarexio/mongovec/transport/http"
	natsT "github.com/flarexio/mongovec/transport/nats"
)

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:     "mongovec",
		Usage:    "Semantic search over MongoDB Atlas vector search",
		Flags:    rootFlags(),
		Action:   runREPL,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the search service over HTTP and NATS",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "nats",
						Usage:   "NATS server URL",
						Sources: cli.EnvVars("NATS_URL"),
					},
					&cli.StringFlag{
						Name:    "nats-creds",
						Usage:   "NATS user credentials file",
						Sources: cli.EnvVars("NATS_CREDS"),
					},
					&cli.StringFlag{
						Name:  "topic",
						Usage: "NATS subject prefix",
						Value: "mongovec",
					},
					&cli.StringFlag{
						Name:  "http-addr",
						Usage: "HTTP server address",
						Value: ":8080",
					},
				},
				Action: runServe,
			},
			{
				Name:  "connect",
				Usage: "Run the query loop against a remote service over NATS",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "nats",
						Usage:    "NATS server URL",
						Sources:  cli.EnvVars("NATS_URL"),
						Required: true,
					},
					&cli.StringFlag{
						Name:    "nats-creds",
						Usage:   "NATS user credentials file",
						Sources: cli.EnvVars("NATS_CREDS"),
					},
					&cli.StringFlag{
						Name:  "topic",
						Usage: "NATS subject prefix",
						Value: "mongovec",
					},
				},
				Action: runConnect,
			},
			{
				Name:      "insert",
				Usage:     "Embed and insert the given texts",
				ArgsUsage: "<text>...",
				Action:    runInsert,
			},
			{
				Name:      "search",
				Usage:     "Run a single query",
				ArgsUsage: "<query>",
				Action:    runSearch,
			},
			{
				Name:   "create-index",
				Usage:  "Create the Atlas vector search index",
				Action: runCreateIndex,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "similarity",
						Usage: "Similarity function (cosine, euclidean, dotProduct)",
						Value: "cosine",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP over stdio",
				Action: runMCP,
			},
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to a YAML config file",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "Vector store backend (mongo, chromem, qdrant)",
			Value: "mongo",
		},
		&cli.StringFlag{
			Name:    "mongodb-uri",
			Usage:   "MongoDB connection string",
			Sources: cli.EnvVars("MONGODB_URI"),
		},
		&cli.StringFlag{
			Name:    "mongodb-db",
			Usage:   "MongoDB database",
			Value:   mongovec.DefaultDatabase,
			Sources: cli.EnvVars("MONGODB_DB"),
		},
		&cli.StringFlag{
			Name:    "mongodb-collection",
			Usage:   "MongoDB collection",
			Value:   mongovec.DefaultCollection,
			Sources: cli.EnvVars("MONGODB_COLLECTION"),
		},
		&cli.StringFlag{
			Name:    "mongodb-vector-index",
			Usage:   "Atlas vector search index name",
			Value:   mongovec.DefaultIndex,
			Sources: cli.EnvVars("MONGODB_VECTOR_INDEX"),
		},
		&cli.StringFlag{
			Name:  "chromem-path",
			Usage: "Directory for a persistent chromem store",
		},
		&cli.StringFlag{
			Name:    "qdrant-host",
			Usage:   "Qdrant host",
			Sources: cli.EnvVars("QDRANT_HOST"),
		},
		&cli.IntFlag{
			Name:    "qdrant-port",
			Usage:   "Qdrant gRPC port",
			Sources: cli.EnvVars("QDRANT_PORT"),
		},
		&cli.StringFlag{
			Name:    "embedding-provider",
			Usage:   "Embedding provider (ollama, openai)",
			Value:   "ollama",
			Sources: cli.EnvVars("EMBEDDING_PROVIDER"),
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Sources: cli.EnvVars("EMBEDDING_MODEL"),
		},
		&cli.StringFlag{
			Name:    "embedding-url",
			Usage:   "Embedding API base URL, e.g. http://localhost:11434/api",
			Sources: cli.EnvVars("EMBEDDING_URL"),
		},
		&cli.StringFlag{
			Name:    "openai-api-key",
			Usage:   "OpenAI API key",
			Sources: cli.EnvVars("OPENAI_API_KEY"),
		},
		&cli.IntFlag{
			Name:  "num-candidates",
			Usage: "Candidate pool size for approximate search",
			Value: mongovec.DefaultNumCandidates,
		},
		&cli.IntFlag{
			Name:  "top-k",
			Usage: "Number of results per query",
			Value: mongovec.DefaultTopK,
		},
		&cli.BoolFlag{
			Name:  "seed",
			Usage: "Insert sample documents when the store is empty",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log at info level",
		},
	}
}

func runREPL(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	c, err := build(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer c.svc.Close()

	printBanner(os.Stdout, c)

	if cmd.Bool("seed") {
		n, err := c.svc.Seed(ctx, mongovec.SampleTexts)
		if err != nil {
			return err
		}

		if n > 0 {
			fmt.Printf("Inserted %d documents\n", n)
		}
	}

	return repl.Run(ctx, c.svc, os.Stdin, os.Stdout, c.cfg.Search.TopK)
}

func runInsert(ctx context.Context, cmd *cli.Command) error {
	texts := cmd.Args().Slice()
	if len(texts) == 0 {
		return mongovec.ErrNoTexts
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	c, err := build(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer c.svc.Close()

	n, err := c.svc.Insert(ctx, texts)
	if err != nil {
		return err
	}

	fmt.Printf("Inserted %d documents\n", n)
	return nil
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if query == "" {
		return mongovec.ErrEmptyQuery
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	c, err := build(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer c.svc.Close()

	results, err := c.svc.Search(ctx, query, c.cfg.Search.TopK)
	if err != nil {
		return err
	}

	repl.PrintResults(os.Stdout, results)
	return nil
}

func runCreateIndex(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	c, err := build(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer c.svc.Close()

	store, ok := c.store.(*mongo.MongoStore)
	if !ok {
		return errors.New("create-index requires the mongo store")
	}

	name, err := store.CreateVectorIndex(ctx,
		c.cfg.Vector.Mongo.Index,
		c.embedder.Dimensions(),
		cmd.String("similarity"),
	)
	if err != nil {
		return err
	}

	fmt.Printf("Created vector search index %q (%d dimensions)\n", name, c.embedder.Dimensions())
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	c, err := build(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer c.svc.Close()

	svc := c.svc

	if cmd.Bool("seed") {
		if _, err := svc.Seed(ctx, mongovec.SampleTexts); err != nil {
			return err
		}
	}

	endpoints := mongovec.MakeEndpoints(svc)

	// Add NATS Transport
	if natsURL := cmd.String("nats"); natsURL != "" {
		opts := []nats.Option{
			nats.Name("mongovec server"),
		}

		if creds := cmd.String("nats-creds"); creds != "" {
			opts = append(opts, nats.UserCredentials(creds))
		}

		nc, err := nats.Connect(natsURL, opts...)
		if err != nil {
			return err
		}
		defer nc.Drain()

		srv, err := micro.AddService(nc, micro.Config{
			Name:    "mongovec",
			Version: "1.0.0",
		})
		if err != nil {
			return err
		}
		defer srv.Stop()

		root := srv.AddGroup(cmd.String("topic"))
		natsT.AddEndpoints(root, endpoints)
	}

	// Add HTTP Transport
	errs := make(chan error, 1)
	{
		r := gin.Default()
		httpT.AddRouters(r, endpoints)
		httpT.AddStreamableRouters(r, mcpEndpoints(svc))

		httpAddr := cmd.String("http-addr")
		go func() {
			errs <- r.Run(httpAddr)
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	return waitServe(log, quit, errs)
}

// waitServe blocks until a shutdown signal arrives or the HTTP listener
// fails.
func waitServe(log *zap.Logger, quit <-chan os.Signal, errs <-chan error) error {
	select {
	case sign := <-quit:
		log.Info("graceful shutdown", zap.String("signal", sign.String()))
		return nil

	case err := <-errs:
		return fmt.Errorf("http server: %w", err)
	}
}

func runConnect(ctx context.Context, cmd *cli.Command) error {
	opts := []nats.Option{
		nats.Name("mongovec client"),
	}

	if creds := cmd.String("nats-creds"); creds != "" {
		opts = append(opts, nats.UserCredentials(creds))
	}

	nc, err := nats.Connect(cmd.String("nats"), opts...)
	if err != nil {
		return err
	}
	defer nc.Drain()

	endpoints := natsT.MakeEndpoints(nc, cmd.String("topic"))

	var svc mongovec.Service
	svc = mongovec.ProxyMiddleware(endpoints)(svc)

	return repl.Run(ctx, svc, os.Stdin, os.Stdout, int(cmd.Int("top-k")))
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// stdout carries the protocol; logs stay quiet
	log := zap.NewNop()
	zap.ReplaceGlobals(log)

	c, err := build(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer c.svc.Close()

	s := NewStdioMCPServer(os.Stdin, os.Stdout)
	for method, endpoint := range mcpEndpoints(c.svc) {
		s.AddEndpoint(method, endpoint)
	}

	errs := make(chan error, 1)
	go func() {
		errs <- s.Listen(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-quit:
		cancel()
		return nil

	case err := <-errs:
		return err
	}
}

func mcpEndpoints(svc mongovec.Service) map[mcp.MCPMethod]mcpE.MCPEndpoint {
	endpoints := make(map[mcp.MCPMethod]mcpE.MCPEndpoint)
	endpoints[mcp.MethodInitialize] = mcpE.InitializeEndpoint(svc)
	endpoints[mcp.MethodPing] = mcpE.PingEndpoint(svc)
	endpoints[mcp.MethodToolsList] = mcpE.ListToolsEndpoint(svc)
	endpoints[mcp.MethodToolsCall] = mcpE.CallToolEndpoint(svc)
	return endpoints
}
