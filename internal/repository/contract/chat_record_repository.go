package contract

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/specification"
)

type ChatRecordRepository interface {
	Create(ctx context.Context, record *entity.ChatRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRecord, error)
}
