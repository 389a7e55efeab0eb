package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/events"
	"ai-chatbot-be/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IKnowledgeService manages documents and their segments.
type IKnowledgeService interface {
	IngestDocument(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	GetSegments(ctx context.Context, documentId uuid.UUID) ([]*dto.SegmentResponse, error)
	IndexSegment(ctx context.Context, segmentId uuid.UUID) (*dto.IndexSegmentResponse, error)
	ReindexAll(ctx context.Context) (*dto.ReindexResponse, error)
}

type knowledgeService struct {
	uowFactory       unitofwork.RepositoryFactory
	embeddingService IEmbeddingService
	publisherService IPublisherService
	eventPublisher   events.Publisher
	chunkSize        int
	logger           logger.ILogger
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingService IEmbeddingService,
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IKnowledgeService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	return &knowledgeService{
		uowFactory:       uowFactory,
		embeddingService: embeddingService,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		chunkSize:        constant.DocumentChunkChars,
		logger:           log,
	}
}

// IngestDocument stores the document and its fixed-length segments, then
// queues one indexing job per segment.
func (ks *knowledgeService) IngestDocument(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	now := time.Now()
	document := entity.Document{
		Id:        uuid.New(),
		Title:     req.Title,
		Source:    req.Source,
		CreatedAt: now,
	}

	chunks := utils.Chunk(req.Content, ks.chunkSize)
	segments := make([]*entity.Segment, len(chunks))
	for i, chunk := range chunks {
		segments[i] = &entity.Segment{
			Id:         uuid.New(),
			DocumentId: document.Id,
			ChunkIndex: i,
			Content:    chunk,
			CreatedAt:  now,
		}
	}

	uow := ks.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}
	if err := uow.SegmentRepository().CreateBulk(ctx, segments); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	segmentIds := make([]uuid.UUID, len(segments))
	for i, seg := range segments {
		segmentIds[i] = seg.Id

		payload, err := json.Marshal(dto.PublishIndexSegmentMessage{SegmentId: seg.Id})
		if err != nil {
			return nil, err
		}
		// The segment is saved; a lost job only delays indexing until the next reindex.
		if err := ks.publisherService.Publish(ctx, payload); err != nil {
			ks.logger.Error("KNOWLEDGE", "Failed to queue segment indexing", map[string]interface{}{
				"segment_id": seg.Id.String(),
				"error":      err.Error(),
			})
		}
	}

	ks.logger.Info("KNOWLEDGE", "Document ingested", map[string]interface{}{
		"document_id": document.Id.String(),
		"segments":    len(segments),
	})

	evt := events.New(constant.EventDocumentIngested, map[string]interface{}{
		"document_id": document.Id.String(),
		"title":       document.Title,
		"segments":    len(segments),
	})
	if err := ks.eventPublisher.Publish(ctx, evt); err != nil {
		ks.logger.Warn("KNOWLEDGE", "Failed to publish DOCUMENT_INGESTED event", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return &dto.IngestDocumentResponse{
		Id:         document.Id,
		SegmentIds: segmentIds,
	}, nil
}

func (ks *knowledgeService) GetSegments(ctx context.Context, documentId uuid.UUID) ([]*dto.SegmentResponse, error) {
	uow := ks.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	segments, err := uow.SegmentRepository().FindByDocumentID(ctx, documentId)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SegmentResponse, len(segments))
	for i, seg := range segments {
		res[i] = &dto.SegmentResponse{
			Id:         seg.Id,
			DocumentId: seg.DocumentId,
			ChunkIndex: seg.ChunkIndex,
			Content:    seg.Content,
			Indexed:    seg.HasVector(),
			Dimension:  len(seg.Vector),
			CreatedAt:  seg.CreatedAt,
		}
	}
	return res, nil
}

func (ks *knowledgeService) IndexSegment(ctx context.Context, segmentId uuid.UUID) (*dto.IndexSegmentResponse, error) {
	ctx = context.WithoutCancel(ctx)
	uow := ks.uowFactory.NewUnitOfWork(ctx)

	segment, err := uow.SegmentRepository().FindOne(ctx, specification.ByID{ID: segmentId})
	if err != nil {
		return nil, err
	}
	if segment == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Segment not found")
	}

	dim, err := ks.embeddingService.IndexSegment(ctx, segment.Id, segment.Content)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadGateway, "Segment could not be indexed")
	}

	return &dto.IndexSegmentResponse{
		Id:        segment.Id,
		Dimension: dim,
	}, nil
}

func (ks *knowledgeService) ReindexAll(ctx context.Context) (*dto.ReindexResponse, error) {
	return ks.embeddingService.ReindexAll(context.WithoutCancel(ctx))
}
