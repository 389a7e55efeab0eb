package service

import (
	"context"
	"encoding/json"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber       message.Subscriber
	topicName        string
	uowFactory       unitofwork.RepositoryFactory
	embeddingService IEmbeddingService
	logger           logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingService IEmbeddingService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:       subscriber,
		topicName:        topicName,
		uowFactory:       uowFactory,
		embeddingService: embeddingService,
		logger:           log,
	}
}

// Consume starts indexing queued segments in a background goroutine.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage indexes one segment. Every outcome is acked: indexing is
// best effort and a failed segment is picked up again by the next reindex.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.PublishIndexSegmentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("INDEX_CONSUMER", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	segment, err := uow.SegmentRepository().FindOne(ctx, specification.ByID{ID: payload.SegmentId})
	if err != nil {
		cs.logger.Error("INDEX_CONSUMER", "Failed to load segment", map[string]interface{}{
			"segment_id": payload.SegmentId.String(),
			"error":      err.Error(),
		})
		return
	}
	if segment == nil {
		cs.logger.Warn("INDEX_CONSUMER", "Segment not found", map[string]interface{}{
			"segment_id": payload.SegmentId.String(),
		})
		return
	}

	dim, err := cs.embeddingService.IndexSegment(ctx, segment.Id, segment.Content)
	if err != nil {
		cs.logger.Error("INDEX_CONSUMER", "Failed to index segment", map[string]interface{}{
			"segment_id": segment.Id.String(),
			"error":      err.Error(),
		})
		return
	}

	cs.logger.Debug("INDEX_CONSUMER", "Segment indexed", map[string]interface{}{
		"segment_id": segment.Id.String(),
		"dimension":  dim,
	})
}
