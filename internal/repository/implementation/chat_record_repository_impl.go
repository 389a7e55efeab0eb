package implementation

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/mapper"
	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/internal/repository/contract"
	"ai-chatbot-be/internal/repository/scope"
	"ai-chatbot-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ChatRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatRecordMapper
}

func NewChatRecordRepository(db *gorm.DB) contract.ChatRecordRepository {
	return &ChatRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatRecordMapper(),
	}
}

func (r *ChatRecordRepositoryImpl) Create(ctx context.Context, record *entity.ChatRecord) error {
	m, err := r.mapper.ToModel(record)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

// FindAll returns matching records oldest first, the order of the transcript.
func (r *ChatRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRecord, error) {
	var models []*model.ChatRecord
	query := r.db.WithContext(ctx).Scopes(scope.OrderByCreatedAsc)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
