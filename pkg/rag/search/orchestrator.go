package search

import (
	"context"
	"fmt"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/store"
	"ai-chatbot-be/pkg/vector"

	"github.com/google/uuid"
)

// Embedder turns text into a vector. ok is false when the vector is
// unavailable (blank input or provider failure) and must not be ranked.
type Embedder interface {
	Embed(ctx context.Context, text string) (vec []float32, ok bool)
}

// Index ranks stored vectors against a query.
type Index interface {
	Search(ctx context.Context, query []float32, k int, minSimilarity float64) ([]vector.Match, error)
}

// SegmentFetcher loads segment contents in the order of ids.
type SegmentFetcher interface {
	FetchSegments(ctx context.Context, ids []uuid.UUID) ([]store.Document, error)
}

// Config encapsulates search parameters
type Config struct {
	TopK          int
	MinSimilarity float64
}

// Orchestrator embeds a query, ranks the index and hydrates the matches.
type Orchestrator struct {
	embedder Embedder
	index    Index
	fetcher  SegmentFetcher
	logger   logger.ILogger
}

// NewOrchestrator creates a new search orchestrator
func NewOrchestrator(embedder Embedder, index Index, fetcher SegmentFetcher, log logger.ILogger) *Orchestrator {
	return &Orchestrator{
		embedder: embedder,
		index:    index,
		fetcher:  fetcher,
		logger:   log,
	}
}

// Execute returns the segments most similar to query, best first. An
// unavailable query embedding yields no documents and no error.
func (o *Orchestrator) Execute(ctx context.Context, query string, cfg Config) ([]store.Document, error) {
	vec, ok := o.embedder.Embed(ctx, query)
	if !ok {
		o.logger.Warn("SEARCH", "Query embedding unavailable, skipping retrieval", nil)
		return nil, nil
	}

	matches, err := o.index.Search(ctx, vec, cfg.TopK, cfg.MinSimilarity)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	if len(matches) == 0 {
		o.logger.Debug("SEARCH", "No segment above threshold", map[string]interface{}{
			"min_similarity": cfg.MinSimilarity,
		})
		return nil, nil
	}

	docs, err := o.fetcher.FetchSegments(ctx, vector.IDs(matches))
	if err != nil {
		return nil, fmt.Errorf("fetch segments failed: %w", err)
	}

	scores := make(map[string]float64, len(matches))
	for _, m := range matches {
		scores[m.SegmentID.String()] = m.Score
	}
	for i := range docs {
		docs[i].Score = float32(scores[docs[i].ID])
	}

	o.logger.Debug("SEARCH", "Retrieved segments", map[string]interface{}{
		"count":     len(docs),
		"top_score": matches[0].Score,
	})
	return docs, nil
}

// Contents extracts the text of each document in order.
func Contents(docs []store.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Content
	}
	return out
}
