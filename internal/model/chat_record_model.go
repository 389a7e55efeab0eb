package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatRecord struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    *uuid.UUID     `gorm:"type:uuid;index"`
	SessionId string         `gorm:"type:varchar(64);not null;index:idx_chat_records_session_created,priority:1"`
	Question  string         `gorm:"type:text;not null"`
	Answer    string         `gorm:"type:text;not null"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index:idx_chat_records_session_created,priority:2"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (ChatRecord) TableName() string {
	return "chat_records"
}
