package driven

// Prompt names understood by PromptStore implementations.
const (
	// PromptAskSystem is the system prompt for grounded answering.
	PromptAskSystem = "ask_system"

	// PromptChatSystem is the system prompt for the interactive chat.
	PromptChatSystem = "chat_system"
)

// PromptStore loads prompt templates for the generation services.
// Implementations fall back to embedded defaults when a template is
// missing.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}
