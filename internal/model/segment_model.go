package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type Document struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string         `gorm:"type:varchar(255);not null"`
	Source    string         `gorm:"type:varchar(255)"`
	Segments  []Segment      `gorm:"foreignKey:DocumentId"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}

type Segment struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;index"`
	ChunkIndex int       `gorm:"default:0"`
	Content    string    `gorm:"type:text;not null"`
	// Vector holds the big-endian float32 encoding; EmbeddingValue mirrors it for pgvector search.
	Vector         []byte           `gorm:"type:bytea"`
	EmbeddingValue *pgvector.Vector `gorm:"type:vector"`
	CreatedAt      time.Time        `gorm:"autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt   `gorm:"index"`
}

func (Segment) TableName() string {
	return "segments"
}
