package constant

// ai_configurations keys
const (
	AiConfigKeyChatMode             = "chat_mode"
	AiConfigKeySystemPrompt         = "prompt_system"
	AiConfigKeyPreventHallucination = "prompt_prevent_hallucination"
	AiConfigKeyCitation             = "prompt_citation"
	AiConfigKeyFormatInstruction    = "prompt_format_instruction"
)

// Event types published on the NATS bus as events.<type>
const (
	EventChatAnswered     = "CHAT_ANSWERED"
	EventDocumentIngested = "DOCUMENT_INGESTED"
	EventChatModeChanged  = "CHAT_MODE_CHANGED"
	EventReindexCompleted = "REINDEX_COMPLETED"
)

const (
	DefaultIndexTopicName = "INDEX_SEGMENT"

	VectorBackendMemory   = "memory"
	VectorBackendPgvector = "pgvector"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	EmbeddingProviderOllama = "ollama"
	EmbeddingProviderOpenAI = "openai"
)
