package search

import (
	"context"
	"errors"
	"testing"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/store"
	"ai-chatbot-be/pkg/vector"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vec []float32
	ok  bool
}

func (f fakeEmbedder) Embed(context.Context, string) ([]float32, bool) {
	return f.vec, f.ok
}

type memoryIndex struct {
	ix *vector.MemoryIndex
}

func (m memoryIndex) Search(_ context.Context, q []float32, k int, min float64) ([]vector.Match, error) {
	return m.ix.Search(q, k, min), nil
}

type fakeFetcher struct {
	contents map[uuid.UUID]string
	err      error
	asked    []uuid.UUID
}

func (f *fakeFetcher) FetchSegments(_ context.Context, ids []uuid.UUID) ([]store.Document, error) {
	f.asked = ids
	if f.err != nil {
		return nil, f.err
	}
	docs := make([]store.Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, store.Document{ID: id.String(), Content: f.contents[id]})
	}
	return docs, nil
}

func TestExecuteRanksAndHydrates(t *testing.T) {
	cat, dog, far := uuid.New(), uuid.New(), uuid.New()
	ix := vector.NewMemoryIndex()
	require.NoError(t, ix.Put(cat, []float32{1, 0.1}))
	require.NoError(t, ix.Put(dog, []float32{1, 0.4}))
	require.NoError(t, ix.Put(far, []float32{0, 1}))

	fetcher := &fakeFetcher{contents: map[uuid.UUID]string{
		cat: "A cat sat on the mat.",
		dog: "A dog sat on the log.",
	}}
	o := NewOrchestrator(fakeEmbedder{vec: []float32{1, 0}, ok: true}, memoryIndex{ix}, fetcher, logger.NewNopLogger())

	docs, err := o.Execute(context.Background(), "What did the cat do?", Config{TopK: 3, MinSimilarity: 0.7})
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, []uuid.UUID{cat, dog}, fetcher.asked)
	assert.Equal(t, "A cat sat on the mat.", docs[0].Content)
	assert.Greater(t, docs[0].Score, docs[1].Score)
	assert.Equal(t, []string{"A cat sat on the mat.", "A dog sat on the log."}, Contents(docs))
}

func TestExecuteUnavailableEmbedding(t *testing.T) {
	fetcher := &fakeFetcher{}
	o := NewOrchestrator(fakeEmbedder{ok: false}, memoryIndex{vector.NewMemoryIndex()}, fetcher, logger.NewNopLogger())

	docs, err := o.Execute(context.Background(), "q", Config{TopK: 3, MinSimilarity: 0.7})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Nil(t, fetcher.asked)
}

func TestExecuteFetchError(t *testing.T) {
	id := uuid.New()
	ix := vector.NewMemoryIndex()
	require.NoError(t, ix.Put(id, []float32{1, 0}))

	o := NewOrchestrator(fakeEmbedder{vec: []float32{1, 0}, ok: true}, memoryIndex{ix}, &fakeFetcher{err: errors.New("db down")}, logger.NewNopLogger())

	_, err := o.Execute(context.Background(), "q", Config{TopK: 3, MinSimilarity: 0.7})
	assert.ErrorContains(t, err, "db down")
}
