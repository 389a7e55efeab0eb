package mapper

import (
	"encoding/json"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/model"

	"gorm.io/datatypes"
)

type ChatRecordMapper struct{}

func NewChatRecordMapper() *ChatRecordMapper {
	return &ChatRecordMapper{}
}

func (m *ChatRecordMapper) ToEntity(r *model.ChatRecord) *entity.ChatRecord {
	if r == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(r.Metadata) > 0 {
		_ = json.Unmarshal(r.Metadata, &metadata)
	}

	return &entity.ChatRecord{
		Id:        r.Id,
		UserId:    r.UserId,
		SessionId: r.SessionId,
		Question:  r.Question,
		Answer:    r.Answer,
		Metadata:  metadata,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (m *ChatRecordMapper) ToModel(r *entity.ChatRecord) (*model.ChatRecord, error) {
	if r == nil {
		return nil, nil
	}

	var metadata datatypes.JSON
	if len(r.Metadata) > 0 {
		raw, err := json.Marshal(r.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = datatypes.JSON(raw)
	}

	return &model.ChatRecord{
		Id:        r.Id,
		UserId:    r.UserId,
		SessionId: r.SessionId,
		Question:  r.Question,
		Answer:    r.Answer,
		Metadata:  metadata,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func (m *ChatRecordMapper) ToEntities(records []*model.ChatRecord) []*entity.ChatRecord {
	entities := make([]*entity.ChatRecord, len(records))
	for i, r := range records {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
