package embedding

import (
	"context"
	"errors"
	"time"
)

const DefaultTimeout = 30 * time.Second

// ErrEmptyEmbedding is returned when a provider answers without a vector.
var ErrEmptyEmbedding = errors.New("embedding: provider returned an empty vector")

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	Name() string
}
