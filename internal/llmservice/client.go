package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"pdf-rag/internal/config"
	"pdf-rag/internal/models"
)

// Client invokes a named model with a text payload and returns its text output
type Client interface {
	Invoke(ctx context.Context, modelID, text string) (string, error)
}

// Connect opens a client for the provider configured under llm
func Connect(ctx context.Context, cfg *config.Config) (Client, error) {
	log.Debug().Interface("llmConfig", map[string]string{
		"provider": cfg.LLM.Provider,
		"base_url": cfg.LLM.BaseURL,
		"model":    cfg.LLM.Model,
		"region":   cfg.AWS.Region,
	}).Msg("Connecting to model service")

	switch cfg.LLM.Provider {
	case config.ProviderBedrock:
		runtime, err := NewRuntimeClient(ctx, &cfg.AWS)
		if err != nil {
			return nil, err
		}
		return NewBedrockClient(runtime), nil
	case config.ProviderOllama:
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.LLM.BaseURL),
			ollama.WithModel(cfg.LLM.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to initialize ollama: %w", models.ErrService, err)
		}
		return NewLangchainClient(llm), nil
	case config.ProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(cfg.LLM.Key, "Bearer ")),
			openai.WithModel(cfg.LLM.Model),
		}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.LLM.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to initialize openai: %w", models.ErrAuth, err)
		}
		return NewLangchainClient(llm), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}

// LangchainClient sends the payload as a single human message to a langchaingo model
type LangchainClient struct {
	llm llms.Model
}

func NewLangchainClient(llm llms.Model) *LangchainClient {
	return &LangchainClient{llm: llm}
}

func (c *LangchainClient) Invoke(ctx context.Context, modelID, text string) (string, error) {
	msgContent := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: text}},
		},
	}

	var opts []llms.CallOption
	if modelID != "" {
		opts = append(opts, llms.WithModel(modelID))
	}

	res, err := c.llm.GenerateContent(ctx, msgContent, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: failed to generate content: %w", models.ErrService, err)
	}
	if res == nil || len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", models.ErrMalformedResponse)
	}
	return res.Choices[0].Content, nil
}
