package contract

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredSegment wraps Segment with its cosine similarity to a query
type ScoredSegment struct {
	Segment    *entity.Segment
	Similarity float64
}

type SegmentRepository interface {
	Create(ctx context.Context, segment *entity.Segment) error
	CreateBulk(ctx context.Context, segments []*entity.Segment) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Segment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Segment, error)
	// FindByIDs returns segments in the order of ids; unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Segment, error)
	FindByDocumentID(ctx context.Context, documentId uuid.UUID) ([]*entity.Segment, error)
	UpdateVector(ctx context.Context, id uuid.UUID, vec []float32) error
	// ClearVector drops the persisted vector so the segment counts as unindexed.
	ClearVector(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredSegment, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
}
