package domain

// CommandKind enumerates the intents a chat turn can be classified into.
type CommandKind int

const (
	// CommandPlainQuery is a question answered via retrieval and completion.
	CommandPlainQuery CommandKind = iota

	// CommandSendReport emails an analysis report to an address in the text.
	CommandSendReport

	// CommandSupportTicket sends a support ticket to the operator address.
	CommandSupportTicket

	// CommandProcessStoreDocuments re-runs ingestion over every stored document.
	CommandProcessStoreDocuments

	// CommandSaveSession archives the session and emails a summary.
	CommandSaveSession
)

// String returns the intent name.
func (k CommandKind) String() string {
	switch k {
	case CommandPlainQuery:
		return "PlainQuery"
	case CommandSendReport:
		return "SendReport"
	case CommandSupportTicket:
		return "SupportTicket"
	case CommandProcessStoreDocuments:
		return "ProcessStoreDocuments"
	case CommandSaveSession:
		return "SaveSession"
	default:
		return "Unknown"
	}
}

// CommandIntent is the classified meaning of one chat turn.
// It is derived from the raw text and consumed immediately.
type CommandIntent struct {
	// Kind is the matched intent.
	Kind CommandKind

	// Text is the raw chat turn.
	Text string

	// Email is the address extracted for SendReport, possibly invalid.
	Email string

	// Err is set when a SendReport turn carries no usable address.
	// It wraps ErrInvalidEmailAddress; the turn is answered with feedback
	// instead of being dispatched.
	Err error
}

// IsCommand reports whether the intent is anything other than a plain query.
func (c CommandIntent) IsCommand() bool {
	return c.Kind != CommandPlainQuery
}

// CommandUsage documents one chat command for help screens.
type CommandUsage struct {
	// Kind is the intent the example classifies as.
	Kind CommandKind

	// Example is what the user types.
	Example string

	// Summary says what the command does.
	Summary string
}

// ChatCommands lists the chat commands in the order help screens show them.
// Each Example classifies as its Kind.
var ChatCommands = []CommandUsage{
	{Kind: CommandSaveSession, Example: "save session", Summary: "archive the conversation and email a summary"},
	{Kind: CommandSendReport, Example: "send report to you@example.com", Summary: "email an analysis of the last answer"},
	{Kind: CommandSupportTicket, Example: "create support ticket", Summary: "send a support ticket to the operator"},
	{Kind: CommandProcessStoreDocuments, Example: "process s3", Summary: "re-index every stored document"},
}
