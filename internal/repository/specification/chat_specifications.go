package specification

import "gorm.io/gorm"

// BySessionID selects the transcript of one conversation.
type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}
