package contract

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/specification"
)

type IAiConfigRepository interface {
	FindAllConfigurations(ctx context.Context, specs ...specification.Specification) ([]*entity.AiConfiguration, error)
	FindConfigurationByKey(ctx context.Context, key string) (*entity.AiConfiguration, error)
	// Upsert inserts the configuration or overwrites the value of an existing key.
	Upsert(ctx context.Context, config *entity.AiConfiguration) error
}
