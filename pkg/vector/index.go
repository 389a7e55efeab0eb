package vector

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrDimensionMismatch is returned when a vector disagrees with the index's active dimension.
	ErrDimensionMismatch = errors.New("vector: dimension mismatch")
	// ErrZeroVector is returned for vectors that carry no signal and must not be ranked.
	ErrZeroVector = errors.New("vector: zero vector")
)

// Match is a single search hit.
type Match struct {
	SegmentID uuid.UUID
	Score     float64
}

// MemoryIndex is an in-memory segmentId -> vector map with brute-force cosine search.
// Without a configured dimension the first stored vector fixes it until the
// index empties again.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]float32
	dim     int
	base    int
}

func NewMemoryIndex() *MemoryIndex {
	return NewMemoryIndexWithDimension(0)
}

// NewMemoryIndexWithDimension creates an index that only accepts vectors of
// length dim. dim <= 0 behaves like NewMemoryIndex.
func NewMemoryIndexWithDimension(dim int) *MemoryIndex {
	if dim < 0 {
		dim = 0
	}
	return &MemoryIndex{
		entries: make(map[uuid.UUID][]float32),
		dim:     dim,
		base:    dim,
	}
}

// Put stores a copy of v under id, replacing any previous vector.
func (ix *MemoryIndex) Put(id uuid.UUID, v []float32) error {
	if IsZero(v) {
		return ErrZeroVector
	}

	stored := make([]float32, len(v))
	copy(stored, v)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.dim != 0 && len(stored) != ix.dim {
		return fmt.Errorf("%w: index has %d, got %d", ErrDimensionMismatch, ix.dim, len(stored))
	}
	ix.dim = len(stored)
	ix.entries[id] = stored
	return nil
}

func (ix *MemoryIndex) Get(id uuid.UUID) ([]float32, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	v, ok := ix.entries[id]
	return v, ok
}

func (ix *MemoryIndex) Delete(id uuid.UUID) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.entries, id)
	if len(ix.entries) == 0 {
		ix.dim = ix.base
	}
}

func (ix *MemoryIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Dimension returns the active dimension, or 0 when it is not fixed yet.
func (ix *MemoryIndex) Dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dim
}

// Search returns at most k matches scoring at least minSimilarity, best first.
// Ties keep no particular order.
func (ix *MemoryIndex) Search(query []float32, k int, minSimilarity float64) []Match {
	if k <= 0 || IsZero(query) {
		return nil
	}

	ix.mu.RLock()
	matches := make([]Match, 0, len(ix.entries))
	for id, v := range ix.entries {
		score := CosineSimilarity(query, v)
		if score < minSimilarity {
			continue
		}
		matches = append(matches, Match{SegmentID: id, Score: score})
	}
	ix.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// IDs returns the segment ids of matches in rank order.
func IDs(matches []Match) []uuid.UUID {
	ids := make([]uuid.UUID, len(matches))
	for i, m := range matches {
		ids[i] = m.SegmentID
	}
	return ids
}
