package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/metrics"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/embedding"
	"ai-chatbot-be/pkg/events"
	"ai-chatbot-be/pkg/store"
	"ai-chatbot-be/pkg/vector"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrEmbeddingUnavailable is returned by indexing when no usable vector could be produced.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// IEmbeddingService is the vector index and embedding gateway.
type IEmbeddingService interface {
	// Embed returns the vector for text. ok is false for blank input or a
	// provider failure; the vector is then all zeros and must not be ranked.
	Embed(ctx context.Context, text string) (vec []float32, ok bool)
	IndexSegment(ctx context.Context, segmentId uuid.UUID, content string) (int, error)
	ReindexAll(ctx context.Context) (*dto.ReindexResponse, error)
	Load(ctx context.Context) (int, error)
	Search(ctx context.Context, query []float32, k int, minSimilarity float64) ([]vector.Match, error)
	FetchSegments(ctx context.Context, ids []uuid.UUID) ([]store.Document, error)
	IndexSize() int
}

type EmbeddingServiceConfig struct {
	Dimension     int
	Timeout       time.Duration
	VectorBackend string
	Concurrency   int
	RatePerSec    float64
}

type embeddingService struct {
	provider   embedding.EmbeddingProvider
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
	config     EmbeddingServiceConfig

	index   atomic.Pointer[vector.MemoryIndex]
	limiter *rate.Limiter
	// indexing is held shared by single-segment indexing and exclusively by
	// ReindexAll, so no write lands in an index that is about to be replaced.
	indexing sync.RWMutex
}

func NewEmbeddingService(
	provider embedding.EmbeddingProvider,
	uowFactory unitofwork.RepositoryFactory,
	publisher events.Publisher,
	cfg EmbeddingServiceConfig,
	log logger.ILogger,
) IEmbeddingService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = embedding.DefaultTimeout
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	s := &embeddingService{
		provider:   provider,
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     log,
		config:     cfg,
		limiter:    rate.NewLimiter(limit, cfg.Concurrency),
	}
	s.index.Store(vector.NewMemoryIndexWithDimension(cfg.Dimension))
	return s
}

func (s *embeddingService) currentIndex() *vector.MemoryIndex {
	return s.index.Load()
}

func (s *embeddingService) zeroVector() []float32 {
	dim := s.currentIndex().Dimension()
	if dim == 0 {
		dim = s.config.Dimension
	}
	return make([]float32, dim)
}

func (s *embeddingService) Embed(ctx context.Context, text string) ([]float32, bool) {
	if strings.TrimSpace(text) == "" {
		return s.zeroVector(), false
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	vec, err := s.provider.Generate(ctx, text)
	if err == nil && vector.IsZero(vec) {
		err = embedding.ErrEmptyEmbedding
	}
	if err != nil {
		metrics.EmbeddingFailuresTotal.Inc()
		s.logger.Error("EMBEDDING", "Embedding provider failed", map[string]interface{}{
			"provider":    s.provider.Name(),
			"text_length": len(text),
			"error":       err.Error(),
		})
		return s.zeroVector(), false
	}
	return vec, true
}

// IndexSegment embeds content, stores it in the index and persists the vector.
// It returns the vector dimension.
func (s *embeddingService) IndexSegment(ctx context.Context, segmentId uuid.UUID, content string) (int, error) {
	s.indexing.RLock()
	defer s.indexing.RUnlock()

	return s.indexInto(ctx, s.currentIndex(), segmentId, content)
}

func (s *embeddingService) indexInto(ctx context.Context, ix *vector.MemoryIndex, segmentId uuid.UUID, content string) (int, error) {
	vec, ok := s.Embed(ctx, content)
	if !ok {
		metrics.IndexOperationsTotal.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("index segment %s: %w", segmentId, ErrEmbeddingUnavailable)
	}

	if err := ix.Put(segmentId, vec); err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("VECTOR_INDEX", "Failed to store vector", map[string]interface{}{
			"segment_id": segmentId.String(),
			"dimension":  len(vec),
			"error":      err.Error(),
		})
		return 0, fmt.Errorf("index segment %s: %w", segmentId, err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SegmentRepository().UpdateVector(ctx, segmentId, vec); err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("VECTOR_INDEX", "Failed to persist vector", map[string]interface{}{
			"segment_id": segmentId.String(),
			"error":      err.Error(),
		})
		return 0, fmt.Errorf("persist vector for segment %s: %w", segmentId, err)
	}

	metrics.IndexOperationsTotal.WithLabelValues("indexed").Inc()
	return len(vec), nil
}

// ReindexAll re-embeds every stored segment into a fresh index and swaps it
// in once done. Segments that fail are left out of the new index.
func (s *embeddingService) ReindexAll(ctx context.Context) (*dto.ReindexResponse, error) {
	s.indexing.Lock()
	defer s.indexing.Unlock()

	start := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)
	segments, err := uow.SegmentRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return nil, fmt.Errorf("load segments: %w", err)
	}

	s.logger.Info("VECTOR_INDEX", "Reindex started", map[string]interface{}{
		"segments": len(segments),
		"provider": s.provider.Name(),
	})

	fresh := vector.NewMemoryIndex()
	var indexed, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for _, seg := range segments {
		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}
			if _, err := s.indexInto(gctx, fresh, seg.Id, seg.Content); err != nil {
				failed.Add(1)
				if seg.HasVector() {
					s.clearVector(gctx, seg.Id)
				}
				return nil
			}
			indexed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reindex aborted: %w", err)
	}

	s.index.Store(fresh)

	if s.config.Dimension > 0 && fresh.Dimension() > 0 && fresh.Dimension() != s.config.Dimension {
		s.logger.Warn("VECTOR_INDEX", "Provider dimension differs from EMBEDDING_DIMENSION, update it before the next restart", map[string]interface{}{
			"configured": s.config.Dimension,
			"provider":   fresh.Dimension(),
		})
	}

	elapsed := time.Since(start)
	metrics.ReindexDuration.Observe(elapsed.Seconds())

	res := &dto.ReindexResponse{
		Total:      len(segments),
		Indexed:    int(indexed.Load()),
		Failed:     int(failed.Load()),
		Dimension:  fresh.Dimension(),
		DurationMs: elapsed.Milliseconds(),
	}

	s.logger.Info("VECTOR_INDEX", "Reindex completed", map[string]interface{}{
		"total":     res.Total,
		"indexed":   res.Indexed,
		"failed":    res.Failed,
		"dimension": res.Dimension,
	})

	evt := events.New(constant.EventReindexCompleted, map[string]interface{}{
		"total":     res.Total,
		"indexed":   res.Indexed,
		"failed":    res.Failed,
		"dimension": res.Dimension,
	})
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("VECTOR_INDEX", "Failed to publish reindex event", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return res, nil
}

// clearVector drops a vector the rebuilt index no longer holds, so a restart
// cannot load it back under another dimension.
func (s *embeddingService) clearVector(ctx context.Context, segmentId uuid.UUID) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SegmentRepository().ClearVector(ctx, segmentId); err != nil {
		s.logger.Error("VECTOR_INDEX", "Failed to clear stale vector", map[string]interface{}{
			"segment_id": segmentId.String(),
			"error":      err.Error(),
		})
	}
}

// Load rebuilds the in-memory index from persisted vectors. The configured
// dimension is authoritative; without one the oldest vector fixes it.
// Disagreeing vectors are skipped.
func (s *embeddingService) Load(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	segments, err := uow.SegmentRepository().FindAll(ctx,
		specification.WithVector{},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return 0, fmt.Errorf("load segment vectors: %w", err)
	}

	fresh := vector.NewMemoryIndexWithDimension(s.config.Dimension)
	skipped := 0
	for _, seg := range segments {
		if !seg.HasVector() {
			continue
		}
		if err := fresh.Put(seg.Id, seg.Vector); err != nil {
			skipped++
			s.logger.Warn("VECTOR_INDEX", "Skipping persisted vector", map[string]interface{}{
				"segment_id": seg.Id.String(),
				"dimension":  len(seg.Vector),
				"error":      err.Error(),
			})
		}
	}

	s.indexing.Lock()
	s.index.Store(fresh)
	s.indexing.Unlock()

	s.logger.Info("VECTOR_INDEX", "Index loaded", map[string]interface{}{
		"loaded":    fresh.Len(),
		"skipped":   skipped,
		"dimension": fresh.Dimension(),
	})
	return fresh.Len(), nil
}

func (s *embeddingService) Search(ctx context.Context, query []float32, k int, minSimilarity float64) ([]vector.Match, error) {
	if k <= 0 || vector.IsZero(query) {
		return nil, nil
	}

	if s.config.VectorBackend == constant.VectorBackendPgvector {
		matches, err := s.searchPgvector(ctx, query, k, minSimilarity)
		if err == nil {
			return matches, nil
		}
		s.logger.Warn("VECTOR_INDEX", "pgvector search failed, using in-memory index", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return s.currentIndex().Search(query, k, minSimilarity), nil
}

func (s *embeddingService) searchPgvector(ctx context.Context, query []float32, k int, minSimilarity float64) ([]vector.Match, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.SegmentRepository().SearchSimilarWithScore(ctx, query, k, minSimilarity)
	if err != nil {
		return nil, err
	}

	matches := make([]vector.Match, len(scored))
	for i, sc := range scored {
		matches[i] = vector.Match{SegmentID: sc.Segment.Id, Score: sc.Similarity}
	}
	return matches, nil
}

func (s *embeddingService) FetchSegments(ctx context.Context, ids []uuid.UUID) ([]store.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	segments, err := uow.SegmentRepository().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	docs := make([]store.Document, len(segments))
	for i, seg := range segments {
		docs[i] = store.Document{
			ID:         seg.Id.String(),
			DocumentID: seg.DocumentId.String(),
			Content:    seg.Content,
			Metadata: map[string]interface{}{
				"chunk_index": seg.ChunkIndex,
			},
		}
	}
	return docs, nil
}

func (s *embeddingService) IndexSize() int {
	return s.currentIndex().Len()
}
