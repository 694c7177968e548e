package constant

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"
)

// Event topics on the in-process bus
const (
	TopicInteractionLogged = "INTERACTION_LOGGED"
)

// Fixed user-visible fallback replies. Confidence values attached to each are
// part of the pipeline contract, keep them in sync with the response generator.
const (
	ReplyInsufficientContext = "I don't have enough information to answer that question."
	ReplyGenerationError     = "I encountered an error while processing your request."
	ReplyPipelineError       = "I encountered an error while processing your request. Please try again."
	ReplyConversationalError = "I'd love to chat with you! What would you like to talk about?"
)
