package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestDocumentRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Source  string `json:"source" validate:"omitempty,max=255"`
	Content string `json:"content" validate:"required,notblank"`
}

type IngestDocumentResponse struct {
	Id         uuid.UUID   `json:"id"`
	SegmentIds []uuid.UUID `json:"segment_ids"`
}

type SegmentResponse struct {
	Id         uuid.UUID `json:"id"`
	DocumentId uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Indexed    bool      `json:"indexed"`
	Dimension  int       `json:"dimension,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type IndexSegmentResponse struct {
	Id        uuid.UUID `json:"id"`
	Dimension int       `json:"dimension"`
}

type ReindexResponse struct {
	Total      int   `json:"total"`
	Indexed    int   `json:"indexed"`
	Failed     int   `json:"failed"`
	Dimension  int   `json:"dimension"`
	DurationMs int64 `json:"duration_ms"`
}

// PublishIndexSegmentMessage is the payload of an INDEX_SEGMENT job.
type PublishIndexSegmentMessage struct {
	SegmentId uuid.UUID `json:"segment_id"`
}
