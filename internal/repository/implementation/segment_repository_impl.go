package implementation

import (
	"context"
	"errors"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/mapper"
	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/internal/repository/contract"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/pkg/vector"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type SegmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SegmentMapper
}

func NewSegmentRepository(db *gorm.DB) contract.SegmentRepository {
	return &SegmentRepositoryImpl{
		db:     db,
		mapper: mapper.NewSegmentMapper(),
	}
}

func (r *SegmentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SegmentRepositoryImpl) Create(ctx context.Context, segment *entity.Segment) error {
	m := r.mapper.ToModel(segment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*segment = *r.mapper.ToEntity(m)
	return nil
}

func (r *SegmentRepositoryImpl) CreateBulk(ctx context.Context, segments []*entity.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	models := make([]*model.Segment, len(segments))
	for i, s := range segments {
		models[i] = r.mapper.ToModel(s)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	// Update IDs back to entities
	for i, m := range models {
		*segments[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *SegmentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Segment, error) {
	var m model.Segment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SegmentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Segment, error) {
	var models []*model.Segment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SegmentRepositoryImpl) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Segment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := r.FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*entity.Segment, len(found))
	for _, s := range found {
		byID[s.Id] = s
	}
	ordered := make([]*entity.Segment, 0, len(found))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

func (r *SegmentRepositoryImpl) FindByDocumentID(ctx context.Context, documentId uuid.UUID) ([]*entity.Segment, error) {
	return r.FindAll(ctx,
		specification.ByDocumentID{DocumentID: documentId},
		specification.OrderBy{Field: "chunk_index"},
	)
}

func (r *SegmentRepositoryImpl) UpdateVector(ctx context.Context, id uuid.UUID, vec []float32) error {
	updates := map[string]interface{}{
		"vector":          vector.Encode(vec),
		"embedding_value": pgvector.NewVector(vec),
	}
	res := r.db.WithContext(ctx).Model(&model.Segment{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *SegmentRepositoryImpl) ClearVector(ctx context.Context, id uuid.UUID) error {
	updates := map[string]interface{}{
		"vector":          gorm.Expr("NULL"),
		"embedding_value": gorm.Expr("NULL"),
	}
	return r.db.WithContext(ctx).Model(&model.Segment{}).Where("id = ?", id).Updates(updates).Error
}

func (r *SegmentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Segment{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore ranks indexed segments in Postgres, filtered by threshold
func (r *SegmentRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredSegment, error) {
	if limit <= 0 {
		return nil, nil
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	type result struct {
		model.Segment
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("segments").
		Select("segments.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("segments.deleted_at IS NULL").
		Where("embedding_value IS NOT NULL").
		Where("vector_dims(embedding_value) = ?", len(embedding)).
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredSegment, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredSegment{
			Segment:    r.mapper.ToEntity(&res.Segment),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SegmentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewSegmentMapper(),
	}
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, document *entity.Document) error {
	m := r.mapper.DocumentToModel(document)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*document = *r.mapper.DocumentToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	var m model.Document
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.DocumentToEntity(&m), nil
}
