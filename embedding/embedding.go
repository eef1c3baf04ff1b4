package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/philippgille/chromem-go"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported embedding provider")
	ErrEmptyEmbedding      = errors.New("model returned an empty embedding")
)

type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

const (
	// DefaultModel is sentence-transformers/all-MiniLM-L6-v2 as published
	// by Ollama. It produces 384-dimensional vectors.
	DefaultModel = "all-minilm"

	probeText = "dimension probe"
)

type Config struct {
	Provider Provider `yaml:"provider"`
	Model    string   `yaml:"model"`
	BaseURL  string   `yaml:"baseURL"`
	APIKey   string   `yaml:"apiKey"`
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions is the vector length, fixed when the model was loaded.
	Dimensions() int
}

type Func func(ctx context.Context, text string) ([]float32, error)

// NewEmbedder resolves the configured model and probes it once.
// An unreachable model is a startup failure; nothing is retried.
func NewEmbedder(ctx context.Context, cfg Config) (Embedder, error) {
	var fn chromem.EmbeddingFunc

	switch cfg.Provider {
	case ProviderOllama, "":
		model := cfg.Model
		if model == "" {
			model = DefaultModel
		}

		fn = chromem.NewEmbeddingFuncOllama(model, cfg.BaseURL)

	case ProviderOpenAI:
		model := chromem.EmbeddingModelOpenAI(cfg.Model)
		if model == "" {
			model = chromem.EmbeddingModelOpenAI3Small
		}

		fn = chromem.NewEmbeddingFuncOpenAI(cfg.APIKey, model)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}

	return FromFunc(ctx, Func(fn))
}

func FromFunc(ctx context.Context, fn Func) (Embedder, error) {
	v, err := fn(ctx, probeText)
	if err != nil {
		return nil, fmt.Errorf("load embedding model: %w", err)
	}

	if len(v) == 0 {
		return nil, ErrEmptyEmbedding
	}

	return &embedder{
		fn:         fn,
		dimensions: len(v),
	}, nil
}

type embedder struct {
	fn         Func
	dimensions int
}

func (e *embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.fn(ctx, text)
}

func (e *embedder) Dimensions() int {
	return e.dimensions
}
