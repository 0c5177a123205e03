package parser

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/textsplitter"

	"pdf-rag/internal/config"
	"pdf-rag/internal/models"
)

// Splitter breaks page text into overlapping chunks, trying each separator
// in turn until the pieces fit the chunk size.
type Splitter struct {
	splitter textsplitter.RecursiveCharacter
}

func NewSplitter(cfg config.RAGConfig) (*Splitter, error) {
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	separators := cfg.Separators
	if len(separators) == 0 {
		separators = models.DefaultSeparators
	}

	return &Splitter{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithSeparators(separators),
			textsplitter.WithChunkSize(cfg.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		),
	}, nil
}

// Split returns the chunks of docs in document order, then position within the page
func (s *Splitter) Split(docs []models.Document) ([]models.Chunk, error) {
	var chunks []models.Chunk
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}
		texts, err := s.splitter.SplitText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to split %s page %d: %w", doc.SourceFilename, doc.PageNumber, err)
		}
		chunkID := 0
		for _, text := range texts {
			if strings.TrimSpace(text) == "" {
				continue
			}
			chunkID++
			chunks = append(chunks, models.Chunk{
				Content:        text,
				SourceFilename: doc.SourceFilename,
				PageNumber:     doc.PageNumber,
				ChunkID:        chunkID,
			})
		}
	}

	log.Debug().Int("documents", len(docs)).Int("chunks", len(chunks)).Msg("Split documents")
	return chunks, nil
}
