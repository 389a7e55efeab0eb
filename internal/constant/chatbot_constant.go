package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// History lines stored in session state
	HistoryQuestionPrefix = "Q: "
	HistoryAnswerPrefix   = "A: "
	ContextWindowLabel    = "Conversation history:"

	// Knowledge retrieval
	KnowledgeTopK          = 3
	KnowledgeMinSimilarity = 0.7
	ContextWindowPairs     = 3
	DocumentChunkChars     = 500
)

// Default prompt fragments. Each can be overridden through env or the
// ai_configurations table.
const (
	DefaultSystemPrompt = `You are an AI assistant. Prefer the knowledge base content when answering. If a question does not touch sensitive topics such as politics or explicit content, answer it directly. For legal, medical or other questions that may lead to disputes, stress that the answer is for reference only.
You may also receive earlier turns of the conversation. Use them only when the current question depends on them and ignore them otherwise.`

	DefaultPreventHallucinationPrompt = `Only state facts that appear in the knowledge base content or that you are certain of. If the knowledge base does not cover the question, say so instead of guessing.`

	DefaultCitationPrompt = `When you use the knowledge base, mention that the answer comes from the knowledge base.`

	DefaultFormatInstruction = `Answer concisely in the language of the question. Use short paragraphs or lists when they help.`

	IntentClassificationPrompt = `Classify the user question below into exactly one category.

REFUSE: the question involves sensitive topics such as politics, violence or explicit content.
SWITCH: the user asks for a human agent or is clearly very dissatisfied.
ACCEPT: an ordinary question or small talk that can be answered.
OUT_OF_SCOPE: the question needs real-time data or asks the assistant to perform an action.

Reply with only the label in upper case: ACCEPT, REFUSE, OUT_OF_SCOPE or SWITCH.

User question: %s`
)

// Fixed replies
const (
	HandOffMessage         = "Transferring you to a human agent, please wait..."
	NoKnowledgeDisclaimer  = "(This reply did not draw on the knowledge base, please verify it yourself.)"
	GenericApologyMessage  = "Sorry, an error occurred while processing your question."
	PingMessage            = "pong"
	DefaultChatModeSetting = "local"
)

var RefusalMessages = []string{
	"Sorry, your question does not meet the reply requirements. Please ask something else.",
	"This question violates the usage policy, the service has declined to answer.",
	"I'm unable to reply to that.",
}

// Session counters
const (
	CounterQuestions = "questions"
	CounterRefused   = "refused"
	CounterHandOffs  = "handoffs"
	CounterKBMisses  = "kb_misses"
)
