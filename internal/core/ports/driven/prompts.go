package driven

// PromptStore provides access to prompt and email templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the template for the given name.
	// Unknown names fall back to a built-in default when one exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names. Templates use text/template syntax.
const (
	// PromptAnswerSystem frames a question with retrieved document context.
	// Fields: .TotalDocuments, .Context, .Question.
	PromptAnswerSystem = "answer_system"

	// PromptReportEmail is the body of an analysis report email.
	// Fields: .Timestamp, .Query, .Response, .Insights, .Messages.
	PromptReportEmail = "report_email"

	// PromptSupportTicket is the body of a support ticket email.
	// Fields: .TicketID, .Timestamp, .ReplyTo, .Query, .Response, .Messages.
	PromptSupportTicket = "support_ticket"

	// PromptSessionSummary is the body of a saved-session email.
	// Fields: .Timestamp, .Snapshot, .Insights.
	PromptSessionSummary = "session_summary"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses built-in default templates.
	SetPromptStore(store PromptStore)
}
