package driven

import "context"

// Notifier delivers composed emails.
// A nil error means the message was accepted for delivery; nothing is
// retained on failure.
type Notifier interface {
	// SendReport sends an analysis report to the given recipient.
	SendReport(ctx context.Context, subject, body, to string) error

	// SendTicket sends a support ticket to the operator address.
	// replyTo is set as the Reply-To header when non-empty.
	SendTicket(ctx context.Context, subject, body, replyTo string) error

	// TicketRecipient returns the address support tickets are sent to,
	// or "" when tickets cannot be delivered.
	TicketRecipient() string
}
