package unitofwork

import (
	"context"

	"ai-chatbot-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	SegmentRepository() contract.SegmentRepository
	ChatRecordRepository() contract.ChatRecordRepository
	AiConfigRepository() contract.IAiConfigRepository
}
