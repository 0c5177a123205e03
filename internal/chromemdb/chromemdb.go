package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/helper"
	"pdf-rag/internal/models"
)

const positionKey = "position"

// Entry pairs an embedding vector with the text it was computed from
type Entry struct {
	Vector   []float32
	Text     string
	Metadata map[string]string
}

// Index is an in-memory vector index backed by a fresh chromem-go collection.
// It is only built once, there is no update or delete.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	dimension  int
	count      int
}

// Build creates a new index from entries. All vectors must share one dimension.
func Build(ctx context.Context, collectionName string, entries []Entry) (*Index, error) {
	db := chromem.NewDB()
	c, err := db.CreateCollection(collectionName, nil, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	dimension := 0
	docs := make([]chromem.Document, 0, len(entries))
	for i, entry := range entries {
		if len(entry.Vector) == 0 {
			return nil, fmt.Errorf("%w: entry %d has an empty vector", models.ErrDimensionMismatch, i)
		}
		if dimension == 0 {
			dimension = len(entry.Vector)
		} else if len(entry.Vector) != dimension {
			return nil, fmt.Errorf("%w: entry %d has dimension %d, want %d", models.ErrDimensionMismatch, i, len(entry.Vector), dimension)
		}

		id, err := helper.GenerateUUID()
		if err != nil {
			return nil, err
		}
		metadata := make(map[string]string, len(entry.Metadata)+1)
		for k, v := range entry.Metadata {
			metadata[k] = v
		}
		metadata[positionKey] = strconv.Itoa(i)

		docs = append(docs, chromem.Document{
			ID:        id,
			Content:   entry.Text,
			Metadata:  metadata,
			Embedding: entry.Vector,
		})
	}

	if len(docs) > 0 {
		if err := c.AddDocuments(ctx, docs, 1); err != nil {
			return nil, fmt.Errorf("failed to add documents: %w", err)
		}
	}

	log.Debug().Str("collection", collectionName).Int("entries", len(docs)).Int("dimension", dimension).Msg("Built vector index")

	return &Index{
		db:         db,
		collection: c,
		dimension:  dimension,
		count:      len(docs),
	}, nil
}

// Len returns the number of entries
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.count
}

// Dimension returns the vector dimension, 0 for an empty index
func (idx *Index) Dimension() int {
	if idx == nil {
		return 0
	}
	return idx.dimension
}

// Search returns up to k entries ranked by cosine similarity to vector.
// k <= 0 means models.DefaultTopK and k larger than the index returns every entry.
func (idx *Index) Search(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error) {
	if idx.Len() == 0 {
		return []models.SearchResult{}, nil
	}
	if len(vector) != idx.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d", models.ErrDimensionMismatch, len(vector), idx.dimension)
	}
	if k <= 0 {
		k = models.DefaultTopK
	}
	k = min(k, idx.count)

	// chromem selects its top n concurrently, so equal scores would make the
	// cut in any order; rank the whole collection and cut here instead
	results, err := idx.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       idx.count,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return position(results[i]) < position(results[j])
	})
	results = results[:min(k, len(results))]

	out := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		metadata := make(map[string]string, len(r.Metadata))
		for key, v := range r.Metadata {
			if key != positionKey {
				metadata[key] = v
			}
		}
		out = append(out, models.SearchResult{
			Text:       r.Content,
			Metadata:   metadata,
			Similarity: r.Similarity,
		})
	}
	return out, nil
}

func position(r chromem.Result) int {
	p, err := strconv.Atoi(r.Metadata[positionKey])
	if err != nil {
		return 0
	}
	return p
}

// every vector is supplied by the caller, chromem must never embed on its own
func noEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("index embeddings must be supplied by the caller")
}
