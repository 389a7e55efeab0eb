package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// WithVector keeps only segments that have been indexed
type WithVector struct{}

func (s WithVector) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("vector IS NOT NULL")
}
