package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// Ensure OutboxNotifier implements the interface.
var _ driven.Notifier = (*OutboxNotifier)(nil)

// Addresses used when none is configured.
const (
	outboxSender   = "medichat@localhost"
	outboxOperator = "operator@localhost"
)

// OutboxNotifier writes each email as an .eml file instead of sending it.
type OutboxNotifier struct {
	dir      string
	sender   string
	operator string
	now      func() time.Time
}

// NewOutboxNotifier creates the outbox directory if needed.
// If dir is empty, defaults to ~/.medichat/outbox.
func NewOutboxNotifier(dir, sender, operator string) (*OutboxNotifier, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".medichat", "outbox")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating outbox: %w", err)
	}
	if sender == "" {
		sender = outboxSender
	}
	if operator == "" {
		operator = outboxOperator
	}
	return &OutboxNotifier{dir: dir, sender: sender, operator: operator, now: time.Now}, nil
}

// Dir returns the outbox directory.
func (o *OutboxNotifier) Dir() string {
	return o.dir
}

// TicketRecipient returns the address written on ticket messages.
func (o *OutboxNotifier) TicketRecipient() string {
	return o.operator
}

// SendReport writes a report addressed to to.
func (o *OutboxNotifier) SendReport(ctx context.Context, subject, body, to string) error {
	if err := domain.ValidateEmail(to); err != nil {
		return err
	}
	return o.write(ctx, "report", message{From: o.sender, To: to, Subject: subject, Body: body, Date: o.now()})
}

// SendTicket writes a ticket addressed to the operator.
func (o *OutboxNotifier) SendTicket(ctx context.Context, subject, body, replyTo string) error {
	return o.write(ctx, "ticket", message{
		From:    o.sender,
		To:      o.operator,
		ReplyTo: replyTo,
		Subject: subject,
		Body:    body,
		Date:    o.now(),
	})
}

func (o *OutboxNotifier) write(ctx context.Context, kind string, msg message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := msg.bytes()
	if err != nil {
		return fmt.Errorf("compose email: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%s.eml", msg.Date.UTC().Format("20060102T150405Z"), kind, uuid.NewString()[:8])
	if err := os.WriteFile(filepath.Join(o.dir, name), data, 0600); err != nil {
		return fmt.Errorf("write outbox message: %w", err)
	}
	return nil
}
