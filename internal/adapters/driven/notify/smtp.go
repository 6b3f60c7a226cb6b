package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
	"github.com/custodia-labs/medichat/internal/logger"
)

// Ensure SMTPNotifier implements the interface.
var _ driven.Notifier = (*SMTPNotifier)(nil)

const (
	defaultDialTimeout = 30 * time.Second
	implicitTLSPort    = 465
)

// SMTPConfig holds relay settings.
type SMTPConfig struct {
	Server   string
	Port     int
	Sender   string
	Password string

	// Operator receives support tickets.
	Operator string
}

// SMTPNotifier sends email through an authenticated SMTP relay.
type SMTPNotifier struct {
	cfg       SMTPConfig
	tlsConfig *tls.Config
	now       func() time.Time
}

// NewSMTPNotifier validates cfg and creates a notifier.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Server == "" || cfg.Port <= 0 {
		return nil, fmt.Errorf("%w: smtp server and port are required", domain.ErrInvalidConfiguration)
	}
	if err := domain.ValidateEmail(cfg.Sender); err != nil {
		return nil, fmt.Errorf("%w: sender: %w", domain.ErrInvalidConfiguration, err)
	}
	n := &SMTPNotifier{
		cfg:       cfg,
		tlsConfig: &tls.Config{ServerName: cfg.Server, MinVersion: tls.VersionTLS12},
		now:       time.Now,
	}
	if _, err := n.client(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	return n, nil
}

// TicketRecipient returns the operator address.
func (n *SMTPNotifier) TicketRecipient() string {
	return n.cfg.Operator
}

// SendReport sends an analysis report to to.
func (n *SMTPNotifier) SendReport(ctx context.Context, subject, body, to string) error {
	if err := domain.ValidateEmail(to); err != nil {
		return err
	}
	return n.send(ctx, message{From: n.cfg.Sender, To: to, Subject: subject, Body: body, Date: n.now()})
}

// SendTicket sends a support ticket to the operator.
func (n *SMTPNotifier) SendTicket(ctx context.Context, subject, body, replyTo string) error {
	if n.cfg.Operator == "" {
		return fmt.Errorf("%w: no operator address configured", domain.ErrNotifierUnavailable)
	}
	return n.send(ctx, message{
		From:    n.cfg.Sender,
		To:      n.cfg.Operator,
		ReplyTo: replyTo,
		Subject: subject,
		Body:    body,
		Date:    n.now(),
	})
}

func (n *SMTPNotifier) send(ctx context.Context, m message) error {
	msg, err := m.compose()
	if err != nil {
		return fmt.Errorf("compose email: %w", err)
	}
	client, err := n.client()
	if err != nil {
		return err
	}

	start := time.Now()
	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("%w: dial %s: %w", domain.ErrNotifierUnavailable, n.addr(), err)
	}
	defer func() { _ = client.Close() }()

	if err := client.Send(msg); err != nil {
		return fmt.Errorf("send email to %s: %w", m.To, err)
	}
	logger.Elapsed("smtp send", start)
	return nil
}

// client builds a go-mail client. Port 465 uses implicit TLS; other ports
// upgrade with STARTTLS when the server offers it.
func (n *SMTPNotifier) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTimeout(defaultDialTimeout),
		mail.WithTLSConfig(n.tlsConfig),
	}
	if n.cfg.Port == implicitTLSPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if n.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Sender),
			mail.WithPassword(n.cfg.Password),
		)
	}
	return mail.NewClient(n.cfg.Server, opts...)
}

func (n *SMTPNotifier) addr() string {
	return net.JoinHostPort(n.cfg.Server, strconv.Itoa(n.cfg.Port))
}
