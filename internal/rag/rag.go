package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"pdf-rag/internal/chat"
	"pdf-rag/internal/chromemdb"
	"pdf-rag/internal/config"
	"pdf-rag/internal/embedding"
	"pdf-rag/internal/llmservice"
	"pdf-rag/internal/models"
)

// RAG answers questions against a built index
type RAG struct {
	embedder *embedding.Embedder
	client   llmservice.Client
	modelID  string
	topK     int
}

func NewRAG(embedder *embedding.Embedder, client llmservice.Client, cfg *config.Config) *RAG {
	return &RAG{
		embedder: embedder,
		client:   client,
		modelID:  cfg.LLM.Model,
		topK:     cfg.RAG.TopK,
	}
}

// BuildPrompt fills the prompt template with the retrieved context and the question
func BuildPrompt(contextText, query string) string {
	return fmt.Sprintf(models.PromptTemplate, contextText, query)
}

// Answer embeds the query, retrieves the top matches from idx, and asks the
// model with the context-augmented prompt. A nil idx behaves as an empty index.
func (r *RAG) Answer(ctx context.Context, idx *chromemdb.Index, query string) (*models.PromptResponse, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := idx.Search(ctx, queryEmbedding, r.topK)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(results))
	for _, result := range results {
		texts = append(texts, result.Text)
	}
	prompt := BuildPrompt(strings.Join(texts, models.ContextSeparator), query)

	log.Debug().Int("matches", len(results)).Int("prompt_length", len(prompt)).Str("model", r.modelID).Msg("Invoking model")

	content, err := r.client.Invoke(ctx, r.modelID, prompt)
	if err != nil {
		return nil, err
	}

	return &models.PromptResponse{
		Query:   query,
		Prompt:  prompt,
		Sources: results,
		Content: content,
	}, nil
}

// Converse answers query and returns history extended with the user and
// assistant turns. On failure history is returned unchanged.
func (r *RAG) Converse(ctx context.Context, idx *chromemdb.Index, history chat.Log, query string) (chat.Log, string, error) {
	response, err := r.Answer(ctx, idx, query)
	if err != nil {
		return history, "", err
	}
	next := history.
		Append(models.RoleUser, query).
		Append(models.RoleAssistant, response.Content)
	return next, response.Content, nil
}
