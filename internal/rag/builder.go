package rag

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"

	"pdf-rag/internal/chromemdb"
	"pdf-rag/internal/embedding"
	"pdf-rag/internal/parser"
)

// Builder turns a folder of PDFs into a vector index
type Builder struct {
	loader     *parser.Loader
	splitter   *parser.Splitter
	embedder   *embedding.Embedder
	collection string
}

func NewBuilder(loader *parser.Loader, splitter *parser.Splitter, embedder *embedding.Embedder, collection string) *Builder {
	return &Builder{
		loader:     loader,
		splitter:   splitter,
		embedder:   embedder,
		collection: collection,
	}
}

// BuildIndex loads, splits and embeds every PDF in folder into a new index.
// No index is returned if any stage fails.
func (b *Builder) BuildIndex(ctx context.Context, folder string) (*chromemdb.Index, error) {
	docs, err := b.loader.Load(folder)
	if err != nil {
		return nil, err
	}

	chunks, err := b.splitter.Split(docs)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := b.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	entries := make([]chromemdb.Entry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = chromemdb.Entry{
			Vector: vectors[i],
			Text:   chunk.Content,
			Metadata: map[string]string{
				"source":   chunk.SourceFilename,
				"page":     strconv.Itoa(chunk.PageNumber),
				"chunk_id": strconv.Itoa(chunk.ChunkID),
			},
		}
	}

	idx, err := chromemdb.Build(ctx, b.collection, entries)
	if err != nil {
		return nil, err
	}

	log.Info().Str("folder", folder).Int("pages", len(docs)).Int("chunks", len(chunks)).Msg("Index built")
	return idx, nil
}

// Pipeline bundles index building and question answering for one session
type Pipeline struct {
	*Builder
	*RAG
}

func NewPipeline(builder *Builder, rag *RAG) *Pipeline {
	return &Pipeline{Builder: builder, RAG: rag}
}
