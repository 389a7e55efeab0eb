package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatRecord is the append-only transcript row written once per answered question.
type ChatRecord struct {
	Id        uuid.UUID
	UserId    *uuid.UUID
	SessionId string
	Question  string
	Answer    string
	Metadata  map[string]interface{}
	CreatedAt time.Time
	UpdatedAt time.Time
}
