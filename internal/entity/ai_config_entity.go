package entity

import (
	"time"

	"github.com/google/uuid"
)

// AiConfiguration stores AI behavior settings (key-value pairs)
type AiConfiguration struct {
	Id          uuid.UUID
	Key         string // e.g., "chat_mode", "prompt_system"
	Value       string // JSON-encoded value
	ValueType   string // "string", "number", "boolean", "json"
	Description string // Human-readable description
	Category    string // "rag", "llm", "prompt"
	IsSecret    bool   // If true, value is encrypted
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category constants for AiConfiguration
const (
	AiConfigCategoryRAG     = "rag"
	AiConfigCategoryLLM     = "llm"
	AiConfigCategoryPrompt  = "prompt"
	AiConfigCategoryGeneral = "general"
)

// ValueType constants for AiConfiguration
const (
	AiConfigValueTypeString  = "string"
	AiConfigValueTypeNumber  = "number"
	AiConfigValueTypeBoolean = "boolean"
	AiConfigValueTypeJSON    = "json"
)
