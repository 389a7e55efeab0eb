package mapper

import (
	"time"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/pkg/vector"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type SegmentMapper struct{}

func NewSegmentMapper() *SegmentMapper {
	return &SegmentMapper{}
}

func (m *SegmentMapper) ToEntity(s *model.Segment) *entity.Segment {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	// bytea is the source of truth; a corrupt column leaves the segment unindexed
	var vec []float32
	if len(s.Vector) > 0 {
		if decoded, err := vector.Decode(s.Vector); err == nil {
			vec = decoded
		}
	}

	return &entity.Segment{
		Id:         s.Id,
		DocumentId: s.DocumentId,
		ChunkIndex: s.ChunkIndex,
		Content:    s.Content,
		Vector:     vec,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
		IsDeleted:  s.DeletedAt.Valid,
	}
}

func (m *SegmentMapper) ToModel(s *entity.Segment) *model.Segment {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	out := &model.Segment{
		Id:         s.Id,
		DocumentId: s.DocumentId,
		ChunkIndex: s.ChunkIndex,
		Content:    s.Content,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}
	if s.HasVector() {
		out.Vector = vector.Encode(s.Vector)
		pv := pgvector.NewVector(s.Vector)
		out.EmbeddingValue = &pv
	}
	return out
}

func (m *SegmentMapper) ToEntities(segments []*model.Segment) []*entity.Segment {
	entities := make([]*entity.Segment, len(segments))
	for i, s := range segments {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

func (m *SegmentMapper) DocumentToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:        d.Id,
		Title:     d.Title,
		Source:    d.Source,
		CreatedAt: d.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: d.DeletedAt.Valid,
	}
}

func (m *SegmentMapper) DocumentToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:        d.Id,
		Title:     d.Title,
		Source:    d.Source,
		CreatedAt: d.CreatedAt,
		UpdatedAt: updatedAt,
	}
}
