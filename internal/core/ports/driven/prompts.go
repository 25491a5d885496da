package driven

// PromptStore serves the text/template sources for generation prompts.
type PromptStore interface {
	// Load returns the template for name, or an error if none exists.
	Load(name string) (string, error)

	// Reload drops cached templates so edited files are read again.
	Reload()
}

// Prompt names.
const (
	// PromptProposal drafts floor-plan proposals. It is executed with the
	// request fields and the candidate filenames.
	PromptProposal = "proposal"

	// PromptChatSystem is the system instruction for follow-up chat. It is
	// executed with the current proposal text.
	PromptChatSystem = "chat_system"
)
