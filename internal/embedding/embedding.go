package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/embeddings/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"pdf-rag/internal/config"
	"pdf-rag/internal/llmservice"
	"pdf-rag/internal/models"
)

// Embedder turns texts into fixed-dimension vectors through a remote
// embedding service and enforces that every vector has the same length.
type Embedder struct {
	impl      embeddings.Embedder
	dimension int
}

// NewEmbedder wraps an existing langchaingo embedder
func NewEmbedder(impl embeddings.Embedder) *Embedder {
	return &Embedder{impl: impl}
}

// New creates the embedder selected by cfg.Embedding.Provider
func New(ctx context.Context, cfg *config.Config) (*Embedder, error) {
	log.Debug().Interface("config", map[string]string{
		"provider":        cfg.Embedding.Provider,
		"base_url":        cfg.Embedding.BaseURL,
		"embedding_model": cfg.Embedding.Model,
	}).Msg("Creating embedder")

	if cfg.Embedding.Model == "" {
		return nil, fmt.Errorf("no embedding model configured for provider %s", cfg.Embedding.Provider)
	}

	switch cfg.Embedding.Provider {
	case config.ProviderBedrock:
		return NewBedrockEmbedder(ctx, &cfg.AWS, cfg.Embedding.Model)
	case config.ProviderOllama:
		return NewOllamaEmbedder(&cfg.Embedding)
	case config.ProviderOpenAI:
		return NewOpenAIEmbedder(&cfg.Embedding)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}
}

// NewBedrockEmbedder embeds through the Bedrock runtime of the configured region
func NewBedrockEmbedder(ctx context.Context, awsCfg *config.AWSConfig, model string) (*Embedder, error) {
	client, err := llmservice.NewRuntimeClient(ctx, awsCfg)
	if err != nil {
		return nil, err
	}
	impl, err := bedrock.NewBedrock(bedrock.WithClient(client), bedrock.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create bedrock embedder: %w", models.ErrService, err)
	}
	return NewEmbedder(impl), nil
}

func NewOllamaEmbedder(llmConfig *config.LLMConfig) (*Embedder, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize ollama: %w", models.ErrService, err)
	}
	impl, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return NewEmbedder(impl), nil
}

func NewOpenAIEmbedder(llmConfig *config.LLMConfig) (*Embedder, error) {
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithEmbeddingModel(llmConfig.Model),
	}
	if llmConfig.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize openai: %w", models.ErrService, err)
	}
	impl, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return NewEmbedder(impl), nil
}

// Dimension is the vector length seen so far, 0 before the first call
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed returns one vector per text, in input order
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed documents: %w", models.ErrService, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", models.ErrMalformedResponse, len(vectors), len(texts))
	}
	for i, v := range vectors {
		if err := e.checkDimension(len(v)); err != nil {
			return nil, fmt.Errorf("embedding %d: %w", i, err)
		}
	}

	log.Debug().Int("texts", len(texts)).Int("dimension", e.dimension).Msg("Generated embeddings")
	return vectors, nil
}

// EmbedQuery embeds a single query with the same model used for documents
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed query: %w", models.ErrService, err)
	}
	if err := e.checkDimension(len(vector)); err != nil {
		return nil, err
	}
	return vector, nil
}

func (e *Embedder) checkDimension(n int) error {
	if n == 0 {
		return fmt.Errorf("%w: empty embedding", models.ErrMalformedResponse)
	}
	if e.dimension == 0 {
		e.dimension = n
		return nil
	}
	if n != e.dimension {
		return fmt.Errorf("%w: got %d, want %d", models.ErrDimensionMismatch, n, e.dimension)
	}
	return nil
}
